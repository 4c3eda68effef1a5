package desim

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// RunMetadata records when and where a simulation run executed, following
// de_sim's RunMetadata (ip address, start time, run time).
type RunMetadata struct {
	IPAddress string        `yaml:"ip_address"`
	StartTime time.Time     `yaml:"start_time"`
	RunTime   time.Duration `yaml:"run_time"`
}

// RecordStart stamps the IP address and start time, called just before a
// simulation's main loop begins.
func (r *RunMetadata) RecordStart() {
	r.IPAddress = localIPAddress()
	r.StartTime = time.Now()
}

// RecordRunTime stamps the elapsed run time, called once after the loop ends.
func (r *RunMetadata) RecordRunTime() {
	r.RunTime = time.Since(r.StartTime)
}

func localIPAddress() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
			return ipNet.IP.String()
		}
	}
	return ""
}

// AuthorMetadata records who ran the simulation, following de_sim's
// AuthorMetadata dataclass. Fields default to the local OS user when unset.
type AuthorMetadata struct {
	Name         string `yaml:"name,omitempty"`
	Email        string `yaml:"email,omitempty"`
	Username     string `yaml:"username,omitempty"`
	Organization string `yaml:"organization,omitempty"`
}

// DefaultAuthorMetadata populates Username (and Name, if the OS provides a
// display name) from the current OS user, mirroring the original's
// automatic-username fallback when no AuthorMetadata is supplied.
func DefaultAuthorMetadata() AuthorMetadata {
	u, err := user.Current()
	if err != nil {
		return AuthorMetadata{}
	}
	return AuthorMetadata{Username: u.Username, Name: u.Name}
}

// SimulationMetadata bundles a run's configuration, execution record, and
// author, persisted as a single YAML document.
type SimulationMetadata struct {
	Config Config         `yaml:"config"`
	Run    RunMetadata    `yaml:"run"`
	Author AuthorMetadata `yaml:"author"`
}

// writeSimulationMetadata writes metadata to
// <outputDir>/simulation_metadata.yaml, per spec.md §6's metadata directory
// layout.
func writeSimulationMetadata(outputDir string, meta *SimulationMetadata) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling simulation metadata: %w", err)
	}
	path := filepath.Join(outputDir, "simulation_metadata.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing simulation metadata to %s: %w", path, err)
	}
	return nil
}
