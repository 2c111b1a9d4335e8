// Package model defines the provider-agnostic text generation contract used
// by the planning, synthesis, and generic task capabilities. Adapters for
// concrete providers live in the subpackages.
package model
