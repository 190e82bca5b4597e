package job

import (
	"github.com/osmike/jobrun/internal/domain"
)

var _ domain.Control = (*Job)(nil)

// SetDescription replaces the description and emits DescriptionChanged.
func (j *Job) SetDescription(description string) {
	j.description.Store(&description)
	j.fireDescription()
}

// SaveData stores runtime key-value pairs. They appear in Data and in snapshots.
func (j *Job) SaveData(data map[string]interface{}) {
	for k, v := range data {
		j.data.Store(k, v)
	}
}

// Data returns a copy of the saved runtime data.
func (j *Job) Data() map[string]interface{} {
	res := make(map[string]interface{})
	j.data.Range(func(key, value any) bool {
		res[key.(string)] = value
		return true
	})
	return res
}
