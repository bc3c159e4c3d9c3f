package upload

import (
	"io"
	"strings"
)

// Form is a Visitor that collects text fields and stores the first non-empty
// file part through a Store. Later file parts are skipped.
type Form struct {
	store  *Store
	values map[string]string
	file   *StoredFile
}

// NewForm returns a Form writing files to store.
func NewForm(store *Store) *Form {
	return &Form{store: store, values: make(map[string]string)}
}

// Field 记录文本字段，重复出现时以最后一次为准。
func (f *Form) Field(name, value string) error {
	f.values[name] = value
	return nil
}

// File stores the first file part and ignores the rest.
func (f *Form) File(_ string, filename string, r io.Reader) error {
	if f.file != nil {
		return nil
	}
	stored, err := f.store.Save(filename, r)
	if err != nil {
		return err
	}
	f.file = stored
	return nil
}

// Value returns the trimmed value of a text field.
func (f *Form) Value(name string) string {
	return strings.TrimSpace(f.values[name])
}

// Raw returns a text field exactly as submitted.
func (f *Form) Raw(name string) string {
	return f.values[name]
}

// StoredFile returns the stored upload, or nil when none was submitted.
func (f *Form) StoredFile() *StoredFile {
	return f.file
}

// Discard removes the stored file, if any. Used when the record referencing it could not be saved.
func (f *Form) Discard() error {
	if f.file == nil {
		return nil
	}
	err := f.store.Remove(f.file.URL)
	f.file = nil
	return err
}
