// Package testutil provides a small Hetionet-shaped graph shared by tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hetiostats/internal/database/relational"
)

// SampleNodes has five compounds (one without edges), three diseases (one
// untreated) and three genes.
var SampleNodes = []relational.Node{
	{ID: "Compound::DB01", Name: "Aspirin", Kind: relational.KindCompound},
	{ID: "Compound::DB02", Name: "Ibuprofen", Kind: relational.KindCompound},
	{ID: "Compound::DB03", Name: "Lonely", Kind: relational.KindCompound},
	{ID: "Compound::DB04", Name: "Metformin", Kind: relational.KindCompound},
	{ID: "Compound::DB05", Name: "Zileuton", Kind: relational.KindCompound},
	{ID: "Disease::D1", Name: "asthma", Kind: relational.KindDisease},
	{ID: "Disease::D2", Name: "gout", Kind: relational.KindDisease},
	{ID: "Disease::D3", Name: "unlinked", Kind: relational.KindDisease},
	{ID: "Gene::G1", Name: "PTGS1", Kind: relational.KindGene},
	{ID: "Gene::G2", Name: "PTGS2", Kind: relational.KindGene},
	{ID: "Gene::G3", Name: "PRKAA1", Kind: relational.KindGene},
}

// SampleEdges includes a duplicated CtD edge and three edges outside the
// relationship set.
var SampleEdges = []relational.Edge{
	{Source: "Compound::DB01", Target: "Gene::G1", Metaedge: "CbG"},
	{Source: "Compound::DB01", Target: "Gene::G2", Metaedge: "CbG"},
	{Source: "Compound::DB01", Target: "Gene::G3", Metaedge: "CuG"},
	{Source: "Compound::DB01", Target: "Disease::D1", Metaedge: "CtD"},
	{Source: "Compound::DB01", Target: "Disease::D1", Metaedge: "CtD"},
	{Source: "Compound::DB02", Target: "Gene::G1", Metaedge: "CbG"},
	{Source: "Compound::DB02", Target: "Gene::G2", Metaedge: "CdG"},
	{Source: "Compound::DB02", Target: "Disease::D1", Metaedge: "CtD"},
	{Source: "Compound::DB02", Target: "Disease::D2", Metaedge: "CpD"},
	{Source: "Compound::DB04", Target: "Disease::D2", Metaedge: "CtD"},
	{Source: "Compound::DB05", Target: "Gene::G1", Metaedge: "CbG"},
	{Source: "Compound::DB05", Target: "Gene::G2", Metaedge: "CbG"},
	{Source: "Disease::D1", Target: "Gene::G1", Metaedge: "DaG"},
	{Source: "Compound::DB04", Target: "Compound::DB01", Metaedge: "CrC"},
	{Source: "Gene::G1", Target: "Gene::G2", Metaedge: "GiG"},
}

// SampleDrugGeneCounts is the full Q1 result for the sample graph.
var SampleDrugGeneCounts = []relational.DrugGeneCount{
	{ID: "Compound::DB01", Name: "Aspirin", NumGenes: 3, NumDiseases: 2},
	{ID: "Compound::DB02", Name: "Ibuprofen", NumGenes: 2, NumDiseases: 2},
	{ID: "Compound::DB05", Name: "Zileuton", NumGenes: 2, NumDiseases: 0},
	{ID: "Compound::DB04", Name: "Metformin", NumGenes: 0, NumDiseases: 1},
}

// SampleDistribution is the full Q2 result for the sample graph.
var SampleDistribution = []relational.DrugCountBucket{
	{NumDrugs: 2, NumDiseases: 2},
	{NumDrugs: 3, NumDiseases: 2},
	{NumDrugs: 1, NumDiseases: 1},
}

// WriteTSV writes a headed tab-separated file and returns its path.
func WriteTSV(t testing.TB, dir, name string, header []string, rows [][]string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(strings.Join(header, "\t"))
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(strings.Join(r, "\t"))
		b.WriteByte('\n')
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteSample writes the sample graph as nodes.tsv and edges.tsv in the
// Hetionet column layout (edges use a capitalised "Source" header).
func WriteSample(t testing.TB, dir string) (nodesPath, edgesPath string) {
	t.Helper()
	return WriteGraph(t, dir, SampleNodes, SampleEdges)
}

// WriteGraph writes arbitrary nodes and edges as TSV files.
func WriteGraph(t testing.TB, dir string, nodes []relational.Node, edges []relational.Edge) (nodesPath, edgesPath string) {
	t.Helper()
	nodeRows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		nodeRows = append(nodeRows, []string{n.ID, n.Name, n.Kind})
	}
	edgeRows := make([][]string, 0, len(edges))
	for _, e := range edges {
		edgeRows = append(edgeRows, []string{e.Source, e.Metaedge, e.Target})
	}
	nodesPath = WriteTSV(t, dir, "nodes.tsv", []string{"id", "name", "kind"}, nodeRows)
	edgesPath = WriteTSV(t, dir, "edges.tsv", []string{"Source", "metaedge", "target"}, edgeRows)
	return nodesPath, edgesPath
}
