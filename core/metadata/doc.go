// Package metadata describes the per-series records the predictability
// model is trained on and converts their loosely typed fields into typed
// structures.
//
// Records produced by external meta-data generation jobs often carry the
// hpt_res and features fields as Python literal strings, for example
//
//	{'arima': ({'p': 1, 'd': 1, 'q': 0}, 0.12), 'prophet': ({}, 0.31)}
//
// ParseLiteral reads that notation with a small structural parser. It never
// evaluates code: calls, names and operators other than a leading sign are
// rejected with a *ParseError.
package metadata
