package config

// Static lookup tables mapping published market series to curve coordinates.
// They are returned as fresh maps so callers cannot mutate the tables.

// TreasurySeries maps Treasury tenor labels to their FRED series IDs
func TreasurySeries() map[string]string {
	return map[string]string{
		"1M":  "DGS1MO",
		"3M":  "DGS3MO",
		"6M":  "DGS6MO",
		"1Y":  "DGS1",
		"2Y":  "DGS2",
		"3Y":  "DGS3",
		"5Y":  "DGS5",
		"7Y":  "DGS7",
		"10Y": "DGS10",
		"20Y": "DGS20",
		"30Y": "DGS30",
	}
}

// TreasuryMaturities maps Treasury tenor labels to maturities in years
func TreasuryMaturities() map[string]float64 {
	return map[string]float64{
		"1M":  1.0 / 12,
		"3M":  3.0 / 12,
		"6M":  6.0 / 12,
		"1Y":  1,
		"2Y":  2,
		"3Y":  3,
		"5Y":  5,
		"7Y":  7,
		"10Y": 10,
		"20Y": 20,
		"30Y": 30,
	}
}

// CorporateSeries maps corporate bond index labels to their FRED series IDs
func CorporateSeries() map[string]string {
	return map[string]string{
		"AAA":           "DAAA",
		"BAA":           "DBAA",
		"CORP":          "BAMLC0A0CM",
		"HY":            "BAMLH0A0HYM2",
		"CORP_1_3Y":     "BAMLC1A0C13Y",
		"CORP_3_5Y":     "BAMLC2A0C35Y",
		"CORP_5_7Y":     "BAMLC3A0C57Y",
		"CORP_7_10Y":    "BAMLC4A0C710Y",
		"CORP_10_15Y":   "BAMLC7A0C1015Y",
		"CORP_15Y_PLUS": "BAMLC8A0C15PY",
	}
}

// CorporateMaturities maps corporate index labels to approximate midpoint
// maturities in years
func CorporateMaturities() map[string]float64 {
	return map[string]float64{
		"AAA":           10,
		"BAA":           10,
		"CORP":          8,
		"HY":            5,
		"CORP_1_3Y":     2,
		"CORP_3_5Y":     4,
		"CORP_5_7Y":     6,
		"CORP_7_10Y":    8.5,
		"CORP_10_15Y":   12.5,
		"CORP_15Y_PLUS": 20,
	}
}

// CorporateCurveMaturities is the subset of the corporate complex used for
// curve construction. BAA shares the 10-year point with AAA and duplicate
// maturities cannot be bootstrapped, so AAA anchors 10y; BAA is still ingested
// and served through spread curves.
func CorporateCurveMaturities() map[string]float64 {
	m := CorporateMaturities()
	delete(m, "BAA")
	return m
}

// SpreadRatings lists the credit ratings spread curves are maintained for
func SpreadRatings() []string {
	return []string{"AAA", "BAA", "CORP", "HY"}
}
