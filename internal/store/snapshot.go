package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Snapshot file names expected in the data directory. The field names in
// these files follow the upstream export format, which is why they differ
// from the Go struct tags.
const (
	agentSnapshotFile = "agentData.json"
	loginSnapshotFile = "agentLoginData.json"
)

// snapshotAgent is the upstream JSON export shape for an agent profile.
type snapshotAgent struct {
	AgentID     string `json:"AgentID"`
	Name        string `json:"Name"`
	UserName    string `json:"UserName"`
	CompName    string `json:"Comp_Name"`
	Nationality string `json:"Nationality"`
	CreatedDate string `json:"CreatedDate"`
	LastLogin   string `json:"LastLogin"`
}

// snapshotLogin is the upstream JSON export shape for a login event.
type snapshotLogin struct {
	ID        json.Number `json:"ID"`
	AgentID   string      `json:"AGENTID"`
	LoginDate string      `json:"LOGINDATE"`
}

// snapshotDateLayouts are tried in order when parsing snapshot timestamps.
var snapshotDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2-Jan-2006",
}

// LoadRecords returns the full working set from the record store, falling
// back to JSON snapshot files in dataPath when the store holds no agents.
// Snapshot records are written back into the store so store-level queries
// (stats) see the same working set the index serves.
func LoadRecords(ctx context.Context, rs RecordStore, dataPath string) ([]Agent, []LoginEvent, error) {
	agents, err := rs.AllAgents(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(agents) > 0 {
		logins, err := rs.AllLogins(ctx)
		if err != nil {
			return nil, nil, err
		}
		return agents, logins, nil
	}

	agents, logins, err := loadSnapshot(dataPath)
	if err != nil {
		return nil, nil, err
	}
	if len(agents) > 0 {
		log.Printf("store: loaded %d agents and %d logins from JSON snapshot", len(agents), len(logins))
		if err := seedStore(ctx, rs, agents, logins); err != nil {
			return nil, nil, err
		}
	}
	return agents, logins, nil
}

// seedStore persists a snapshot working set into an empty record store.
func seedStore(ctx context.Context, rs RecordStore, agents []Agent, logins []LoginEvent) error {
	for _, a := range agents {
		if err := rs.InsertAgent(ctx, a); err != nil {
			return fmt.Errorf("store: failed to seed agent %s: %w", a.AgentID, err)
		}
	}
	for _, l := range logins {
		if err := rs.InsertLogin(ctx, l); err != nil {
			return fmt.Errorf("store: failed to seed login %d: %w", l.ID, err)
		}
	}
	return nil
}

// loadSnapshot reads the JSON snapshot files if they exist. Missing files
// are not an error; they simply yield empty collections.
func loadSnapshot(dataPath string) ([]Agent, []LoginEvent, error) {
	var agents []Agent
	agentPath := filepath.Join(dataPath, agentSnapshotFile)
	if data, err := os.ReadFile(agentPath); err == nil {
		var raw []snapshotAgent
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, nil, fmt.Errorf("store: invalid agent snapshot %s: %w", agentPath, err)
		}
		for _, sa := range raw {
			a := Agent{
				AgentID:     sa.AgentID,
				Name:        sa.Name,
				Email:       sa.UserName,
				Company:     sa.CompName,
				Nationality: sa.Nationality,
			}
			if t, ok := parseSnapshotDate(sa.CreatedDate); ok {
				a.CreatedAt = t
			}
			if t, ok := parseSnapshotDate(sa.LastLogin); ok {
				a.LastLogin = &t
			}
			agents = append(agents, a)
		}
	} else if !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("store: failed to read agent snapshot: %w", err)
	}

	var logins []LoginEvent
	loginPath := filepath.Join(dataPath, loginSnapshotFile)
	if data, err := os.ReadFile(loginPath); err == nil {
		var raw []snapshotLogin
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, nil, fmt.Errorf("store: invalid login snapshot %s: %w", loginPath, err)
		}
		for _, sl := range raw {
			id, err := strconv.ParseInt(sl.ID.String(), 10, 64)
			if err != nil {
				continue
			}
			l := LoginEvent{ID: id, AgentRef: sl.AgentID}
			if t, ok := parseSnapshotDate(sl.LoginDate); ok {
				l.LoginAt = t
			}
			logins = append(logins, l)
		}
	} else if !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("store: failed to read login snapshot: %w", err)
	}

	return agents, logins, nil
}

// parseSnapshotDate tries each known layout in order.
func parseSnapshotDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range snapshotDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
