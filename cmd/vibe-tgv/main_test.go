package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inodb/vibe-tgv/internal/alignment"
	"github.com/inodb/vibe-tgv/internal/export"
)

const testSAM = "@HD\tVN:1.6\n" +
	"@SQ\tSN:chr1\tLN:1000\n" +
	"r1\t1\tchr1\t3\t60\t6M\t*\t0\t0\tACGCAC\t*\tMM:Z:C+m?,0,0\tML:B:C,250,10\n" +
	"r1\t17\tchr1\t14\t60\t4M\t*\t0\t0\tTTTT\t*\n" +
	"r2\t0\tchr1\t5\t60\t3M2D3M\t*\t0\t0\tAAACCC\t*\n"

func writeSAM(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reads.sam")
	require.NoError(t, os.WriteFile(path, []byte(testSAM), 0644))
	return path
}

func TestRenderView(t *testing.T) {
	cfg := viewConfig{input: writeSAM(t), region: "chr1:1", width: 20, height: 3}

	buf, st, err := renderView(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, st.Quit)

	lines := strings.Split(export.Text(buf), "\n")
	assert.Equal(t, "  -----►     ◄---   ", lines[0])
	assert.Equal(t, "    -------►        ", lines[1])
}

func TestRenderView_Paired(t *testing.T) {
	cfg := viewConfig{input: writeSAM(t), region: "chr1:1", width: 20, height: 3, commands: []string{"paired"}}

	buf, st, err := renderView(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, st.Options.Paired)

	lines := strings.Split(export.Text(buf), "\n")
	assert.Equal(t, "  -----►-----◄---   ", lines[0])
}

func TestRenderView_Commands(t *testing.T) {
	out := filepath.Join(t.TempDir(), "view.svg")
	cfg := viewConfig{
		input: writeSAM(t), region: "chr1:1", width: 20, height: 3,
		commands: []string{"mod", "export svg " + out},
	}

	_, st, err := renderView(cfg, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, st.Exports, 1)
	assert.Equal(t, export.FormatSVG, st.Exports[0].Format)

	cfg.commands = []string{"q"}
	buf, st, err := renderView(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, st.Quit)
	assert.Nil(t, buf)

	cfg.commands = []string{"chr1:invalid"}
	_, _, err = renderView(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestRenderView_Errors(t *testing.T) {
	_, _, err := renderView(viewConfig{input: writeSAM(t), region: "chr1:1", width: 0, height: 3}, zap.NewNop())
	assert.Error(t, err)

	_, _, err = renderView(viewConfig{input: writeSAM(t), region: "chr1:0", width: 5, height: 3}, zap.NewNop())
	assert.Error(t, err)

	_, _, err = renderView(viewConfig{input: filepath.Join(t.TempDir(), "missing.bam"), region: "chr1:1", width: 5, height: 3}, zap.NewNop())
	assert.Error(t, err)
}

func TestDecodeCalls(t *testing.T) {
	path := writeSAM(t)

	calls, err := decodeCalls(path, nil, 1, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, uint64(4), calls[0].Pos)
	assert.Equal(t, uint8(250), calls[0].Probability)
	assert.Equal(t, uint64(6), calls[1].Pos)

	calls, err = decodeCalls(path, &alignment.Region{Chrom: "chr1", Start: 5, End: 10}, 1, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, uint64(6), calls[0].Pos)
}

func TestRunModsIndexed(t *testing.T) {
	path := writeSAM(t)
	dbPath := filepath.Join(t.TempDir(), "calls.duckdb")

	var out bytes.Buffer
	require.NoError(t, runModsIndexed(&out, path, dbPath, nil, 1, zap.NewNop()))
	assert.Equal(t, "#mod\tcalls\thigh\tlow\n5mC\t2\t1\t1\n", out.String())

	out.Reset()
	region := &alignment.Region{Chrom: "chr1", Start: 1, End: 5}
	require.NoError(t, runModsIndexed(&out, path, dbPath, region, 1, zap.NewNop()))
	assert.Equal(t, "#read\tchrom\tpos\tstrand\tmod\tcode\tprob\tlevel\n"+
		"r1\tchr1\t4\t+\t5mC\tm\t250\thigh\n", out.String())

	out.Reset()
	contig, err := alignment.ParseRegion("chr1")
	require.NoError(t, err)
	require.NoError(t, runModsIndexed(&out, path, dbPath, &contig, 1, zap.NewNop()))
	assert.Equal(t, "#read\tchrom\tpos\tstrand\tmod\tcode\tprob\tlevel\n"+
		"r1\tchr1\t4\t+\t5mC\tm\t250\thigh\n"+
		"r1\tchr1\t6\t+\t5mC\tm\t10\tlow\n", out.String())

	assert.Error(t, runModsIndexed(&out, "-", dbPath, nil, 1, zap.NewNop()))
}

func TestVersionCmd(t *testing.T) {
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "vibe-tgv version dev")
}
