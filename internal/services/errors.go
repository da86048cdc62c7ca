package services

import "errors"

var (
	ErrIdentityTaken    = errors.New("username or email already registered")
	ErrInvalidSession   = errors.New("invalid or expired session")
	ErrSharedReadOnly   = errors.New("shared default entries cannot be changed")
	ErrCategoryInUse    = errors.New("category is still referenced by transactions, rules or subcategories")
	ErrDuplicateName    = errors.New("a category with this name already exists")
	ErrDuplicateKeyword = errors.New("a rule for this keyword already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrTypeMismatch     = errors.New("category type does not match the transaction type")
)
