package expression

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
)

// File is the environment ignore expressions are evaluated against.
type File struct {
	Path    string
	Name    string
	Dir     string
	Ext     string
	Size    int64
	ModTime time.Time
}

// NewFile builds the expression environment for a scanned file.
func NewFile(path string, size int64, modTime time.Time) *File {
	return &File{
		Path:    path,
		Name:    filepath.Base(path),
		Dir:     filepath.Dir(path),
		Ext:     strings.ToLower(filepath.Ext(path)),
		Size:    size,
		ModTime: modTime,
	}
}

// Age returns how long ago the file was last modified.
func (f *File) Age() time.Duration {
	return time.Since(f.ModTime)
}

type CompiledExpression struct {
	Program *vm.Program
	Text    string
}

// Compile compiles every boolean expression against the File environment.
func Compile(texts []string) ([]CompiledExpression, error) {
	compiled := make([]CompiledExpression, 0, len(texts))

	for _, text := range texts {
		program, err := expr.Compile(text, expr.Env(&File{}), expr.AsBool())
		if err != nil {
			return nil, errors.Wrapf(err, "compile expression %q", text)
		}

		compiled = append(compiled, CompiledExpression{
			Program: program,
			Text:    text,
		})
	}

	return compiled, nil
}

func CheckFileSingleMatch(f *File, expressions []CompiledExpression) (bool, error) {
	match, _, err := CheckFileSingleMatchWithReason(f, expressions)
	return match, err
}

// CheckFileSingleMatchWithReason returns whether any expression matched f and
// the text of the first one that did.
func CheckFileSingleMatchWithReason(f *File, expressions []CompiledExpression) (bool, string, error) {
	for _, expression := range expressions {
		result, err := expr.Run(expression.Program, f)
		if err != nil {
			return false, "", errors.Wrapf(err, "check expression %q", expression.Text)
		}

		expResult, ok := result.(bool)
		if !ok {
			return false, "", errors.Errorf("expression %q did not return a bool: %T", expression.Text, result)
		}

		if expResult {
			return true, expression.Text, nil
		}
	}

	return false, "", nil
}
