package agents

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
)

// QTable maps state hash -> action hash -> value
type QTable struct {
	table map[string]map[string]float64

	rand *rand.Rand
}

func NewQTable(seed int64) *QTable {
	return &QTable{
		table: make(map[string]map[string]float64),
		rand:  rand.New(rand.NewSource(seed)),
	}
}

func (q *QTable) Get(state, action string, def float64) float64 {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	if _, ok := q.table[state][action]; !ok {
		q.table[state][action] = def
	}
	return q.table[state][action]
}

func (q *QTable) Set(state, action string, val float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	q.table[state][action] = val
}

// Max returns the best known action of the state, or def when nothing is known
func (q *QTable) Max(state string, def float64) (string, float64) {
	if _, ok := q.table[state]; !ok {
		return "", def
	}
	maxAction := ""
	maxVal := math.Inf(-1)
	for a, val := range q.table[state] {
		if val > maxVal {
			maxAction = a
			maxVal = val
		}
	}

	if maxAction == "" {
		return "", def
	}

	return maxAction, maxVal
}

func (q *QTable) Size() int {
	return len(q.table)
}

// MaxAmong returns the best of the given actions, breaking ties at random.
// Unknown actions are initialised to def.
func (q *QTable) MaxAmong(state string, actions []string, def float64) (string, float64) {
	if len(actions) == 0 {
		return "", def
	}
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	maxActions := make([]string, 0)
	maxVal := math.Inf(-1)
	for _, a := range actions {
		if _, ok := q.table[state][a]; !ok {
			q.table[state][a] = def
		}
		val := q.table[state][a]
		if val > maxVal {
			maxActions = make([]string, 0)
			maxVal = val
		}
		if val == maxVal {
			maxActions = append(maxActions, a)
		}
	}

	randAction := q.rand.Intn(len(maxActions))
	return maxActions[randAction], maxVal
}

// CopyInto replaces the entries of other with a copy of the entries of q
func (q *QTable) CopyInto(other *QTable) {
	other.table = make(map[string]map[string]float64, len(q.table))
	for state, entries := range q.table {
		copied := make(map[string]float64, len(entries))
		for action, val := range entries {
			copied[action] = val
		}
		other.table[state] = copied
	}
}

// Read loads a table saved with Save
func (q *QTable) Read(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		in := struct {
			State   string             `json:"state"`
			Entries map[string]float64 `json:"entries"`
		}{}
		if err := json.Unmarshal(scanner.Bytes(), &in); err != nil {
			return fmt.Errorf("error reading file contents: %w", err)
		}
		q.table[in.State] = in.Entries
	}
	return scanner.Err()
}

// Save writes the table as json lines, one state per line
func (q *QTable) Save(path string) error {
	bs := new(bytes.Buffer)

	for state, entries := range q.table {
		stateJ := make(map[string]interface{})
		stateJ["state"] = state
		stateJ["entries"] = entries

		stateBS, err := json.Marshal(stateJ)
		if err != nil {
			return err
		}
		bs.Write(stateBS)
		bs.Write([]byte("\n"))
	}

	return os.WriteFile(path, bs.Bytes(), 0644)
}
