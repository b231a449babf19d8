// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "errors"

// Error taxonomy shared by the tree, store and discussion layers. All of
// them are recoverable and leave no partial writes behind.
var (
	ErrInvalidParent   = errors.New("invalid parent")
	ErrCyclicHierarchy = errors.New("cyclic hierarchy")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
)
