// Package transform turns raw rows into search documents.
//
// Coercion is centralised in Text, Int and RequiredInt: NULL becomes the zero
// value, byte slices are decoded as text, numeric text is parsed, and decimal
// values truncate toward zero. Producer and Product map positional rows to
// documents that always carry every field. A row with too few columns or an
// unparsable number is ErrMalformedRecord.
package transform
