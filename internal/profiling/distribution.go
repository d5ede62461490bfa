package profiling

import (
	"fmt"
	"math"

	"gocausal/domain/table"

	"github.com/montanaflynn/stats"
)

// ColumnProfile summarizes the sample distribution of one column
type ColumnProfile struct {
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Outliers int     `json:"outliers"`
}

// Column roles
const (
	RoleTreatment = "treatment"
	RoleResponse  = "response"
	RoleCovariate = "covariate"
)

// Describe profiles every data column of t in order. Empty tables yield
// profiles with only Name, Role and N set.
func Describe(t *table.Table) ([]ColumnProfile, error) {
	roles := make(map[string]string)
	for _, n := range t.Treatment() {
		roles[n] = RoleTreatment
	}
	for _, n := range t.Response() {
		roles[n] = RoleResponse
	}

	out := make([]ColumnProfile, 0, t.NCol())
	for _, c := range t.Columns() {
		p, err := ProfileColumn(c.Name, c.Values)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", c.Name, err)
		}
		p.Role = RoleCovariate
		if r, ok := roles[c.Name]; ok {
			p.Role = r
		}
		out = append(out, p)
	}
	return out, nil
}

// ProfileColumn computes summary statistics for one column
func ProfileColumn(name string, data []float64) (ColumnProfile, error) {
	p := ColumnProfile{Name: name, N: len(data)}
	if len(data) == 0 {
		return p, nil
	}

	var err error
	if p.Mean, err = stats.Mean(data); err != nil {
		return p, err
	}
	if p.StdDev, err = stats.StandardDeviation(data); err != nil {
		return p, err
	}
	if p.Min, err = stats.Min(data); err != nil {
		return p, err
	}
	if p.Max, err = stats.Max(data); err != nil {
		return p, err
	}
	if p.Median, err = stats.Median(data); err != nil {
		return p, err
	}

	// Nearest-rank quartiles stay defined for tiny samples
	if p.Q25, err = stats.PercentileNearestRank(data, 25); err != nil {
		return p, err
	}
	if p.Q75, err = stats.PercentileNearestRank(data, 75); err != nil {
		return p, err
	}

	p.Skewness = calculateSkewness(data, p.Mean, p.StdDev)
	p.Kurtosis = calculateKurtosis(data, p.Mean, p.StdDev)
	p.Outliers = detectOutliers(data, p.Q25, p.Q75)
	return p, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	return skewness * math.Sqrt(n*(n-1)) / (n - 2)
}

// calculateKurtosis computes bias-corrected sample kurtosis (3 for a normal sample)
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumFourthDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumFourthDeviations += deviation * deviation * deviation * deviation
	}

	excessKurtosis := sumFourthDeviations/n - 3
	correction := (n - 1) / ((n - 2) * (n - 3))
	excessKurtosis = excessKurtosis*correction + 6/(n+1)

	return excessKurtosis + 3
}

// detectOutliers counts values outside the 1.5×IQR fences
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}
	return outlierCount
}
