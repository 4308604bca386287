package repository

import "errors"

// ErrNotFound は更新・削除対象のレコードが存在しないことを示す。
var ErrNotFound = errors.New("record not found")

// ErrNoFields は部分更新のペイロードに更新可能な項目がないことを示す。
var ErrNoFields = errors.New("no updatable fields in payload")
