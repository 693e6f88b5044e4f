// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package generr defines the error kinds reported by the indexing layer.
//
// Every error is synchronous and reflects a caller or configuration
// mistake: generation for the offending kernel aborts with no partial
// result. Kinds are matched with the standard errors.Is.
package generr

import "github.com/pkg/errors"

var (
	// ErrConfiguration reports a descriptor whose declared shape or dtype
	// disagrees with its initializer, or otherwise invalid options.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrArity reports an access with the wrong number of indices.
	ErrArity = errors.New("wrong number of indices")

	// ErrDomainBounds reports a mask-mode domain entry outside the
	// governing mask's size.
	ErrDomainBounds = errors.New("domain entry outside mask bounds")

	// ErrDuplicateDomain reports a domain registered twice under
	// different tree nodes.
	ErrDuplicateDomain = errors.New("domain already present in the tree")

	// ErrFinalized reports a mutation of a finalized domain tree.
	ErrFinalized = errors.New("tree is finalized")

	// ErrAmbiguousAffine reports an affine offset that cannot be
	// attributed to a single index position.
	ErrAmbiguousAffine = errors.New("ambiguous affine offset")
)

// Configurationf returns an ErrConfiguration with a formatted message.
func Configurationf(format string, args ...any) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}

// Arityf returns an ErrArity with a formatted message.
func Arityf(format string, args ...any) error {
	return errors.Wrapf(ErrArity, format, args...)
}

// DomainBoundsf returns an ErrDomainBounds with a formatted message.
func DomainBoundsf(format string, args ...any) error {
	return errors.Wrapf(ErrDomainBounds, format, args...)
}

// DuplicateDomainf returns an ErrDuplicateDomain with a formatted message.
func DuplicateDomainf(format string, args ...any) error {
	return errors.Wrapf(ErrDuplicateDomain, format, args...)
}

// Finalizedf returns an ErrFinalized with a formatted message.
func Finalizedf(format string, args ...any) error {
	return errors.Wrapf(ErrFinalized, format, args...)
}

// AmbiguousAffinef returns an ErrAmbiguousAffine with a formatted message.
func AmbiguousAffinef(format string, args ...any) error {
	return errors.Wrapf(ErrAmbiguousAffine, format, args...)
}
