package usecase

import (
	"strings"

	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
)

// DefaultIgnoredSuffixes lists the paths that never warrant a redeploy
var DefaultIgnoredSuffixes = []string{".md"}

// Classifier decides whether a push contains changes worth deploying
type Classifier struct {
	suffixes []string
	dirs     []string
}

// NewClassifier builds a classifier from an ignore list. Entries ending with
// "/" match a directory at any depth ("docs/" ignores docs/a.go and
// api/docs/b.go); all other entries match a path suffix.
func NewClassifier(ignored []string) *Classifier {
	c := &Classifier{}
	for _, entry := range ignored {
		entry = strings.TrimSpace(entry)
		switch {
		case entry == "" || entry == "/":
			continue
		case strings.HasSuffix(entry, "/"):
			c.dirs = append(c.dirs, strings.TrimPrefix(entry, "/"))
		default:
			c.suffixes = append(c.suffixes, entry)
		}
	}
	return c
}

// IsMeaningful reports whether any commit touches any path that is not ignored
func (c *Classifier) IsMeaningful(commits []model.CommitRecord) bool {
	for _, commit := range commits {
		for _, path := range commit.ModifiedPaths {
			if !c.isIgnored(path) {
				return true
			}
		}
	}
	return false
}

func (c *Classifier) isIgnored(path string) bool {
	for _, suffix := range c.suffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	for _, dir := range c.dirs {
		if strings.HasPrefix(path, dir) || strings.Contains(path, "/"+dir) {
			return true
		}
	}
	return false
}
