package service

import "errors"

var (
	ErrStudyNotFound       = errors.New("study not found")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrNotStudyOwner       = errors.New("unauthorized: not study owner")
	ErrQuestionnaireExists = errors.New("study already has a questionnaire")
	ErrApplyInProgress     = errors.New("template application already in progress for study")
	ErrInvalidSnapshot     = errors.New("template or rules failed validation")
	ErrMissingTemplateID   = errors.New("templateId is required")
)
