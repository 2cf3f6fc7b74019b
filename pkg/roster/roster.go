// Package roster models the course roster: students and groups fetched
// from the learning-management source of truth, and the resolution of
// student identities to hosting platform usernames.
package roster

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Student is an immutable roster record. Login is the hosting platform
// username linked to the student; it may be empty when the student has not
// linked an account yet.
type Student struct {
	ID    int64  `yaml:"id"`
	Name  string `yaml:"name"`
	Login string `yaml:"login,omitempty"`
}

// Membership references a student belonging to a group.
type Membership struct {
	StudentID int64 `yaml:"student_id"`
}

// Group is a named collection of student memberships used during
// group-based provisioning.
type Group struct {
	Name    string       `yaml:"name"`
	Members []Membership `yaml:"members"`
}

// Source supplies the roster. Implementations wrap the learning-management
// system; FileSource provides a file-backed roster for offline use.
type Source interface {
	Students() ([]Student, error)
	Groups() ([]Group, error)
}

// FileSource reads the roster from a local YAML file.
type FileSource struct {
	students []Student
	groups   []Group
}

type rosterFile struct {
	Students []Student `yaml:"students"`
	Groups   []Group   `yaml:"groups,omitempty"`
}

// LoadFile loads a roster from a YAML file.
func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}

	seen := make(map[int64]bool, len(file.Students))
	for _, student := range file.Students {
		if seen[student.ID] {
			return nil, fmt.Errorf("duplicate student id %d in roster", student.ID)
		}
		seen[student.ID] = true
	}
	for _, group := range file.Groups {
		for _, member := range group.Members {
			if !seen[member.StudentID] {
				return nil, fmt.Errorf("group %q references unknown student id %d", group.Name, member.StudentID)
			}
		}
	}

	return &FileSource{students: file.Students, groups: file.Groups}, nil
}

// Students returns the roster's student records.
func (s *FileSource) Students() ([]Student, error) {
	return s.students, nil
}

// Groups returns the roster's group records.
func (s *FileSource) Groups() ([]Group, error) {
	return s.groups, nil
}

// Index builds a lookup from student id to student record.
func Index(students []Student) map[int64]Student {
	index := make(map[int64]Student, len(students))
	for _, student := range students {
		index[student.ID] = student
	}
	return index
}
