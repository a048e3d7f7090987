package ktrace

import (
	"io"
	"strings"
)

const deploymentGroupMarker = "Locating service for consumer group ID"

// Deployments maps consumer group IDs to the deployment units that run
// them, in trace order.
type Deployments struct {
	groupIndex
}

// NewDeployments returns an empty Deployments.
func NewDeployments() *Deployments {
	return &Deployments{groupIndex: newGroupIndex()}
}

// Add appends unit to the deployment units of group.
func (d *Deployments) Add(group, unit string) {
	d.add(group, unit)
}

// Units returns the deployment units of group.
func (d *Deployments) Units(group string) []string {
	return d.get(group)
}

// AllUnits returns every deployment unit across all groups.
func (d *Deployments) AllUnits() map[string]struct{} {
	all := make(map[string]struct{})
	for _, units := range d.values {
		for _, unit := range units {
			all[unit] = struct{}{}
		}
	}
	return all
}

// DeploymentTrace is the parsed consumer-group-to-deployment-unit trace.
type DeploymentTrace struct {
	Deployments *Deployments
	// Located holds every group ID the trace tried to locate.
	Located map[string]struct{}
	// Unmapped lists located groups without any deployment unit, ascending.
	Unmapped []string
}

// ParseDeployments reads a deployment trace. A marker line selects the
// current group; any other non-blank line is a deployment descriptor path
// whose file name, without extension, names a unit of that group. Blank
// lines are dropped and counted in Deployments.BlankLines.
func ParseDeployments(r io.Reader) (*DeploymentTrace, error) {
	trace := &DeploymentTrace{
		Deployments: NewDeployments(),
		Located:     map[string]struct{}{},
	}
	group := ""

	err := eachLine(r, func(_ int, line string) error {
		switch {
		case strings.Contains(line, deploymentGroupMarker):
			id, err := afterFirstColon(line)
			if err != nil {
				return err
			}
			group = id
			trace.Located[group] = struct{}{}
		case isBlank(line):
			trace.Deployments.blank++
		default:
			trace.Deployments.Add(group, DeploymentUnitName(line))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	trace.Unmapped = trace.Deployments.difference(trace.Located)
	return trace, nil
}

// ReadDeploymentsFile parses the deployment trace stored at path.
func ReadDeploymentsFile(path string) (*DeploymentTrace, error) {
	return readFile(path, ParseDeployments)
}

// DeploymentUnitName returns the file name of a descriptor path with its
// extension removed: "/deploy/svc/unit-a.yml" becomes "unit-a".
func DeploymentUnitName(path string) string {
	name := path
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[:i]
	}
	return name
}
