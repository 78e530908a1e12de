package engine

import (
	"cmp"
	"slices"

	"hetiostats/internal/database/relational"
)

type drugKey struct {
	id   string
	name string
}

// CountDrugGenes groups joined rows by (id, name) and counts gene and
// disease relationships per group. Rows are sorted by NumGenes descending,
// then ID and Name ascending.
func CountDrugGenes(joined []relational.JoinedTreatment) []relational.DrugGeneCount {
	index := make(map[drugKey]int)
	out := make([]relational.DrugGeneCount, 0)

	for _, j := range joined {
		k := drugKey{id: j.ID, name: j.Name}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, relational.DrugGeneCount{ID: j.ID, Name: j.Name})
		}
		switch {
		case relational.IsGeneMetaedge(j.Metaedge):
			out[i].NumGenes++
		case relational.IsDiseaseMetaedge(j.Metaedge):
			out[i].NumDiseases++
		}
	}

	slices.SortFunc(out, compareDrugGeneCount)
	return out
}

func compareDrugGeneCount(a, b relational.DrugGeneCount) int {
	if c := cmp.Compare(b.NumGenes, a.NumGenes); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ID, b.ID); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}

// DrugsPerTarget counts the distinct compound ids reaching each target.
func DrugsPerTarget(joined []relational.JoinedTreatment) map[string]int64 {
	seen := make(map[string]map[string]struct{})
	for _, j := range joined {
		ids, ok := seen[j.Target]
		if !ok {
			ids = make(map[string]struct{})
			seen[j.Target] = ids
		}
		ids[j.ID] = struct{}{}
	}

	counts := make(map[string]int64, len(seen))
	for target, ids := range seen {
		counts[target] = int64(len(ids))
	}
	return counts
}

// DistributeByDrugCount groups per-target drug counts into buckets of
// targets sharing the same count. Buckets are sorted by NumDiseases
// descending, then NumDrugs ascending.
func DistributeByDrugCount(perTarget map[string]int64) []relational.DrugCountBucket {
	buckets := make(map[int64]int64)
	for _, n := range perTarget {
		buckets[n]++
	}

	out := make([]relational.DrugCountBucket, 0, len(buckets))
	for numDrugs, numDiseases := range buckets {
		out = append(out, relational.DrugCountBucket{NumDrugs: numDrugs, NumDiseases: numDiseases})
	}
	slices.SortFunc(out, func(a, b relational.DrugCountBucket) int {
		if c := cmp.Compare(b.NumDiseases, a.NumDiseases); c != 0 {
			return c
		}
		return cmp.Compare(a.NumDrugs, b.NumDrugs)
	})
	return out
}

// TopN returns the first n rows, or all rows when n <= 0 or n exceeds the
// length. The result never aliases rows.
func TopN[T any](rows []T, n int) []T {
	if n <= 0 || n > len(rows) {
		n = len(rows)
	}
	return slices.Clone(rows[:n])
}
