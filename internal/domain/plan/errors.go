package plan

import "errors"

var (
	ErrPlanNotFound       = errors.New("plan not found")
	ErrPlanDisabled       = errors.New("plan is disabled")
	ErrPlanAliasExists    = errors.New("plan alias already exists")
	ErrPackageNotFound    = errors.New("package not found")
	ErrPackageAliasExists = errors.New("package alias already exists")
)
