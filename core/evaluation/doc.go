// Package evaluation contains the model-selection helpers used during
// training: shuffled hold-out splits, the precision-recall curve, recall
// constrained threshold selection and binary classification scores.
package evaluation
