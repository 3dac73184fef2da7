// Package classifier provides the binary classifiers the predictability
// model can be trained with. Every variant implements Classifier; they are
// created by name through New, which merges caller parameters over the
// defaults attached to each method.
//
// Supported methods:
//
//	NaiveBayes    Gaussian naive Bayes
//	GBDT          gradient boosted regression trees on the log-loss
//	KNN           k-nearest neighbours (Minkowski distance)
//	RandomForest  bagged CART trees with per-bootstrap class weighting
//
// Labels are 0 or 1 and PredictProba returns the probability of class 1.
// Concrete types are registered with encoding/gob so a fitted classifier
// stored behind the interface survives a model save/load round trip.
package classifier
