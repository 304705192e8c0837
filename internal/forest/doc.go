// Package forest loads tree-ensemble regression models exported by the
// training pipeline and evaluates them.
//
// Models are stored as JSON documents:
//
//	{
//	  "format": "epsfdir-forest",
//	  "version": 1,
//	  "estimator": "RandomForestRegressor",
//	  "n_features_in": 5,
//	  "feature_names": ["Volt_lag1", "Volt_lag2", "Volt_lag3", "Volt_lag6", "Volt_lag12"],
//	  "aggregation": "mean",
//	  "base_score": 0,
//	  "trees": [
//	    {"nodes": [
//	      {"feature": 0, "threshold": 28.5, "left": 1, "right": 2},
//	      {"value": 27.9},
//	      {"value": 29.1}
//	    ]}
//	  ]
//	}
//
// A node with children is a split: inputs with x[feature] <= threshold go
// left. A node without children is a leaf. Child indices always point
// forward, so every tree is acyclic and node 0 is the root.
//
// The ensemble output is base_score plus the mean (random forests) or the
// sum (boosted trees) of the leaf values reached in every tree.
package forest
