package editorial

import (
	"strings"

	"github.com/david/studio-desk/internal/models"
)

const minLockLength = 10

// LockChecks runs the consistency checks a section must pass before it can be
// locked. An empty result means the section may be locked.
func LockChecks(s models.Section) []string {
	var problems []string
	content := strings.TrimSpace(s.ContentText)

	if len(content) < minLockLength {
		problems = append(problems, "Content is too short to lock.")
	}
	if strings.Contains(content, "TODO") {
		problems = append(problems, "Section contains TODOs.")
	}

	return problems
}
