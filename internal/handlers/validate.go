// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"threadpress/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type searchRequest struct {
	Query string `validate:"required,max=200"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"` // bcrypt ignores anything longer
}

// commentRequest carries a new comment. Content rules live with the
// discussion thread so every caller gets the same checks.
type commentRequest struct {
	Content  string     `json:"content"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type statusRequest struct {
	Status models.Status `json:"status" validate:"required,oneof=draft published"`
}

// validationMessage renders validator errors as one readable line, or
// returns "" when v is valid.
func validationMessage(v any) string {
	err := validate.Struct(v)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s is too long (max %s characters)", field, fe.Param()))
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
