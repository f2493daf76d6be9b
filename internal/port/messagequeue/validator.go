package messagequeue

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Validate checks that data is a well-formed LogsIngestedPayload for the
// project named by the last token of subject. Subjects outside prefix pass
// through as long as they carry valid JSON.
func Validate(prefix, subject string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON on subject %s", subject)
	}
	projectID, ok := strings.CutPrefix(subject, prefix+".")
	if !ok {
		return nil
	}

	var p LogsIngestedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", subject, err)
	}
	if p.ProjectID != projectID {
		return fmt.Errorf("payload project %q does not match subject %s", p.ProjectID, subject)
	}
	if len(p.Events) == 0 {
		return fmt.Errorf("payload on %s carries no events", subject)
	}
	return nil
}
