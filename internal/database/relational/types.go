package relational

// Node kinds used by the questions.
const (
	KindCompound = "Compound"
	KindDisease  = "Disease"
	KindGene     = "Gene"
)

// Metaedge labels of the relationship set.
const (
	MetaedgeTreats        = "CtD" // Compound-treats-Disease
	MetaedgeBinds         = "CbG" // Compound-binds-Gene
	MetaedgeUpregulates   = "CuG" // Compound-upregulates-Gene
	MetaedgeDownregulates = "CdG" // Compound-downregulates-Gene
	MetaedgePalliates     = "CpD" // Compound-palliates-Disease
)

// DefaultTopN is the number of rows displayed per question.
const DefaultTopN = 5

var (
	// TreatmentMetaedges is the fixed relationship set edges are filtered by.
	TreatmentMetaedges = []string{
		MetaedgeTreats,
		MetaedgeBinds,
		MetaedgeUpregulates,
		MetaedgeDownregulates,
		MetaedgePalliates,
	}
	// DiseaseMetaedges link a compound to a disease.
	DiseaseMetaedges = []string{MetaedgeTreats, MetaedgePalliates}
	// GeneMetaedges link a compound to a gene.
	GeneMetaedges = []string{MetaedgeBinds, MetaedgeUpregulates, MetaedgeDownregulates}
)

// IsDiseaseMetaedge reports whether m counts toward num_diseases.
func IsDiseaseMetaedge(m string) bool {
	return m == MetaedgeTreats || m == MetaedgePalliates
}

// IsGeneMetaedge reports whether m counts toward num_genes.
func IsGeneMetaedge(m string) bool {
	return m == MetaedgeBinds || m == MetaedgeUpregulates || m == MetaedgeDownregulates
}

// Node is one row of the nodes table.
type Node struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// Edge is one row of the edges table.
type Edge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Metaedge string `json:"metaedge"`
}

// JoinedTreatment is a compound paired with one of its qualifying edges.
type JoinedTreatment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Metaedge string `json:"metaedge"`
	Target   string `json:"target"`
}

// DrugGeneCount is a Q1 row.
type DrugGeneCount struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NumGenes    int64  `json:"num_genes"`
	NumDiseases int64  `json:"num_diseases"`
}

// DrugCountBucket is a Q2 row: how many targets have exactly NumDrugs
// distinct compounds.
type DrugCountBucket struct {
	NumDrugs    int64 `json:"num_drugs"`
	NumDiseases int64 `json:"num_diseases"`
}

// DrugGeneName is a Q3 row.
type DrugGeneName struct {
	Name     string `json:"name"`
	NumGenes int64  `json:"num_genes"`
}

// TargetDrugCount is one row of the per-target table behind Q2.
// TargetName is empty when the target is not a Disease node.
type TargetDrugCount struct {
	TargetID   string `json:"target_id"`
	TargetName string `json:"target_name"`
	NumDrugs   int64  `json:"num_drugs"`
}

// GraphStats summarises the loaded tables.
type GraphStats struct {
	Nodes           int64 `json:"nodes"`
	Edges           int64 `json:"edges"`
	Compounds       int64 `json:"compounds"`
	Diseases        int64 `json:"diseases"`
	QualifyingEdges int64 `json:"qualifying_edges"`
}

// ProjectGeneNames projects Q1 rows to Q3 rows, keeping their order.
func ProjectGeneNames(rows []DrugGeneCount) []DrugGeneName {
	out := make([]DrugGeneName, 0, len(rows))
	for _, r := range rows {
		out = append(out, DrugGeneName{Name: r.Name, NumGenes: r.NumGenes})
	}
	return out
}
