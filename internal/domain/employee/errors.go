package employee

import "errors"

var (
	ErrProfileNotFound     = errors.New("employee profile not found")
	ErrProfileExists       = errors.New("employee profile already exists")
	ErrEmployeeIDRequired  = errors.New("employee id is required")
	ErrRoleChangeForbidden = errors.New("only hr or admin may change an employee role")
)
