// Package dataset loads product CSV files into typed, column-oriented tables.
//
// Each column gets one kind for the whole file, inferred from its cells:
// KindInt when every cell is an integer, KindFloat when every present cell is
// numeric (absent cells become NaN), KindString otherwise. Absent cells are
// empty strings and the usual "NA"/"NaN"/"null" spellings.
package dataset
