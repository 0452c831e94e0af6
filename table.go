package harvest

// Table is a table block that passed the table score threshold.
// Every row has the same length as Headers when headers are present.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Caption string     `json:"caption"`
	Score   int        `json:"score"`
}
