// Package predictability predicts whether a time series can be forecast
// with an error at or below a user-defined threshold.
//
// A Model is built from the meta-data of historical series: their features
// and the error reached by the best candidate forecasting model. Series whose
// best error exceeds the threshold are labelled 1, the others 0. Train fits a
// classifier on those labels and tunes a decision threshold on a validation
// split so that recall stays above a floor while precision is maximised.
//
// Typical use:
//
//	m, err := predictability.New(records, predictability.WithThreshold(0.2))
//	...
//	scores, err := m.Train(predictability.DefaultTrainOptions())
//	ok, err := m.Predict(series, true)
//	err = m.Save("model.gob")
//
//	loaded := predictability.NewForLoad()
//	err = loaded.Load("model.gob")
//
// Note that PredictByFeature returns 1 when the class-1 probability is below
// the decision threshold, i.e. 1 marks a predictable series.
//
// Errors caused by bad input are wrapped around ErrInvalidArgument. Records
// that fail to parse during construction are skipped, reported through the
// logger and exposed by Skipped.
package predictability
