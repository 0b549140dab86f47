package mocks

import (
	"io"
	"iter"

	"github.com/brettbedarf/externals"
	"github.com/stretchr/testify/mock"
)

// MockPath implements externals.Path for testing across packages
type MockPath struct {
	mock.Mock
}

func (m *MockPath) Name() string {
	return m.Called().String(0)
}

func (m *MockPath) String() string {
	return m.Called().String(0)
}

func (m *MockPath) Parent() (externals.Path, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(externals.Path), args.Error(1)
}

func (m *MockPath) Child(segments string) externals.Path {
	args := m.Called(segments)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(externals.Path)
}

func (m *MockPath) Exists() bool {
	return m.Called().Bool(0)
}

func (m *MockPath) IsFile() bool {
	return m.Called().Bool(0)
}

func (m *MockPath) IsDir() bool {
	return m.Called().Bool(0)
}

func (m *MockPath) Content() ([]byte, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPath) SetContent(data []byte) error {
	return m.Called(data).Error(0)
}

func (m *MockPath) ReadableStream(fn func(r externals.ReadStream) error) error {
	return m.Called(fn).Error(0)
}

func (m *MockPath) WritableStream(fn func(w io.Writer) error) error {
	return m.Called(fn).Error(0)
}

func (m *MockPath) Children() iter.Seq[externals.Path] {
	args := m.Called()

	// Handle slice returns for simple tests
	if children, ok := args.Get(0).([]externals.Path); ok {
		return func(yield func(externals.Path) bool) {
			for _, c := range children {
				if !yield(c) {
					return
				}
			}
		}
	}
	if args.Get(0) == nil {
		return func(func(externals.Path) bool) {}
	}
	return args.Get(0).(iter.Seq[externals.Path])
}

func (m *MockPath) Remove() error {
	return m.Called().Error(0)
}

var _ externals.Path = (*MockPath)(nil)
