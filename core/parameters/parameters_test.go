package parameters

import (
	"testing"

	"github.com/npillmayer/mdtree/core"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDefaults(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.core")
	defer teardown()
	//
	regs := NewStyleRegisters()
	assert.Equal(t, "-", regs.S(P_BULLET))
	assert.Equal(t, 3, regs.N(P_FENCELENGTH))
	assert.False(t, regs.B(P_SETEXT))
	assert.Equal(t, "fence-char", P_FENCECHAR.String())
}

func TestRegisterGroups(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.core")
	defer teardown()
	//
	regs := NewStyleRegisters()
	require.NoError(t, regs.Set(P_BULLET, "+"))
	regs.Begingroup()
	require.NoError(t, regs.Set(P_BULLET, "*"))
	assert.Equal(t, "*", regs.S(P_BULLET))
	regs.Begingroup()
	assert.Equal(t, "*", regs.S(P_BULLET), "inner group inherits outer group value")
	require.NoError(t, regs.Set(P_BULLET, "-"))
	assert.Equal(t, "-", regs.S(P_BULLET))
	regs.Endgroup()
	assert.Equal(t, "*", regs.S(P_BULLET))
	regs.Endgroup()
	assert.Equal(t, "+", regs.S(P_BULLET))
	regs.Endgroup() // unbalanced, no-op
	assert.Equal(t, "+", regs.S(P_BULLET))
}

func TestRegisterValidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.core")
	defer teardown()
	//
	regs := NewStyleRegisters()
	err := regs.Set(P_FENCECHAR, "#")
	assert.Equal(t, core.EINVALID, core.Code(err))
	err = regs.Set(P_FENCELENGTH, 2)
	assert.Equal(t, core.EINVALID, core.Code(err))
	err = regs.Set(P_SETEXT, "yes")
	assert.Equal(t, core.EINVALID, core.Code(err))
	assert.Equal(t, "`", regs.S(P_FENCECHAR), "rejected values must not be stored")
}

func TestRegistersFromConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.core")
	defer teardown()
	//
	conf := testconfig.Conf{
		"markdown.fence-char":   "~",
		"markdown.fence-length": "4",
		"markdown.setext":       "true",
		"markdown.line-ending":  "crlf",
	}
	regs, err := FromConfig(conf)
	require.NoError(t, err)
	assert.Equal(t, "~", regs.S(P_FENCECHAR))
	assert.Equal(t, 4, regs.N(P_FENCELENGTH))
	assert.True(t, regs.B(P_SETEXT))
	assert.Equal(t, "\r\n", regs.S(P_LINEENDING))
	//
	_, err = FromConfig(testconfig.Conf{"markdown.bullet": "x"})
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = FromConfig(testconfig.Conf{"markdown.rule-length": "many"})
	assert.Equal(t, core.EINVALID, core.Code(err))
}
