package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_Example(t *testing.T) {
	parser := NewInputParser()
	dataset, err := parser.LoadFromFile("../../test/testdata/facilities.yaml")
	require.NoError(t, err)

	assert.Equal(t, "North Campus", dataset.Name)
	require.Len(t, dataset.Projects, 5)

	library := dataset.Projects[0]
	assert.Equal(t, "P-100", library.ProjectID)
	require.Len(t, library.Components, 3)
	roof := library.Components[0]
	assert.Equal(t, domain.ConditionPoor, roof.Condition)
	require.NotNil(t, roof.EstimatedRepairCost)
	assert.True(t, decimal.NewFromInt(50000).Equal(*roof.EstimatedRepairCost))
	require.NotNil(t, roof.ActionYear)
	assert.Equal(t, 2027, *roof.ActionYear)
	assert.Nil(t, library.CurrentCI, "library metrics are aggregated from components")

	science := dataset.Projects[1]
	require.NotNil(t, science.CurrentCI)
	assert.Equal(t, 40.0, *science.CurrentCI)
	assert.Equal(t, domain.ConditionNotAssessed, science.Components[0].Condition)
	assert.Nil(t, science.Components[0].EstimatedRepairCost)
	assert.Equal(t, domain.ConditionPoor, science.Components[1].Condition, "ratings are normalized")
	require.NotNil(t, science.Components[1].Criticality)
	assert.Equal(t, 1.5, *science.Components[1].Criticality)
}

func TestLoadFromFile_Errors(t *testing.T) {
	parser := NewInputParser()

	_, err := parser.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")

	_, err = parser.LoadFromFile(writeFile(t, "bad.yaml", "projects: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParse_JSON(t *testing.T) {
	dataset, err := NewInputParser().Parse([]byte(`{"projects":[{"project_id":"P-1","name":"Annex","current_ci":55,"replacement_value":"1000000","deferred_maintenance_cost":"250000"}]}`))
	require.NoError(t, err)
	require.Len(t, dataset.Projects, 1)
	assert.True(t, decimal.NewFromInt(250000).Equal(*dataset.Projects[0].DeferredMaintenanceCost))
}

func TestValidateDataset(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no projects",
			yaml:    "name: empty\n",
			wantErr: "no projects provided",
		},
		{
			name:    "missing project id",
			yaml:    "projects:\n  - name: Nameless\n",
			wantErr: "project_id is required",
		},
		{
			name:    "duplicate project id",
			yaml:    "projects:\n  - project_id: P-1\n  - project_id: P-1\n",
			wantErr: "duplicate project_id P-1",
		},
		{
			name:    "ci out of range",
			yaml:    "projects:\n  - project_id: P-1\n    current_ci: 120\n",
			wantErr: "current_ci must be between 0 and 100",
		},
		{
			name:    "negative fci",
			yaml:    "projects:\n  - project_id: P-1\n    current_fci: -1\n",
			wantErr: "current_fci cannot be negative",
		},
		{
			name:    "negative replacement value",
			yaml:    "projects:\n  - project_id: P-1\n    replacement_value: \"-5\"\n",
			wantErr: "replacement_value cannot be negative",
		},
		{
			name:    "negative deferred maintenance",
			yaml:    "projects:\n  - project_id: P-1\n    deferred_maintenance_cost: \"-5\"\n",
			wantErr: "deferred_maintenance_cost cannot be negative",
		},
		{
			name:    "missing component code",
			yaml:    "projects:\n  - project_id: P-1\n    components:\n      - name: Roof\n",
			wantErr: "component_code is required",
		},
		{
			name:    "duplicate component code",
			yaml:    "projects:\n  - project_id: P-1\n    components:\n      - component_code: B3010\n      - component_code: B3010\n",
			wantErr: "duplicate component_code B3010",
		},
		{
			name:    "unknown condition",
			yaml:    "projects:\n  - project_id: P-1\n    components:\n      - component_code: B3010\n        condition: excellent\n",
			wantErr: "unknown condition rating",
		},
		{
			name:    "negative repair cost",
			yaml:    "projects:\n  - project_id: P-1\n    components:\n      - component_code: B3010\n        estimated_repair_cost: \"-1\"\n",
			wantErr: "estimated_repair_cost cannot be negative",
		},
		{
			name:    "non-positive useful life",
			yaml:    "projects:\n  - project_id: P-1\n    components:\n      - component_code: B3010\n        expected_useful_life: 0\n",
			wantErr: "expected_useful_life must be positive",
		},
		{
			name:    "non-positive criticality",
			yaml:    "projects:\n  - project_id: P-1\n    components:\n      - component_code: B3010\n        criticality: 0\n",
			wantErr: "criticality must be positive",
		},
	}

	parser := NewInputParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, strings.HasPrefix(err.Error(), "dataset validation failed"))
		})
	}
}

func TestValidateDataset_EmptyConditionIsNotAssessed(t *testing.T) {
	dataset, err := NewInputParser().Parse([]byte("projects:\n  - project_id: P-1\n    components:\n      - component_code: B3010\n"))
	require.NoError(t, err)
	assert.Equal(t, domain.ConditionNotAssessed, dataset.Projects[0].Components[0].Condition)
}

func TestLoadConstraints(t *testing.T) {
	c, err := NewInputParser().LoadConstraints("../../test/testdata/constraints.yaml")
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(3000000).Equal(c.MaxBudget))
	require.NotNil(t, c.MinProjects)
	assert.Equal(t, 1, *c.MinProjects)
	require.NotNil(t, c.MaxProjects)
	assert.Equal(t, 3, *c.MaxProjects)
	assert.Equal(t, []string{"P-300"}, c.RequiredProjectIDs)
	assert.Equal(t, []string{"P-500"}, c.ExcludedProjectIDs)
	require.NotNil(t, c.MinCIImprovement)
	assert.Equal(t, 10.0, *c.MinCIImprovement)
	assert.Nil(t, c.MaxRiskTolerance)

	_, err = NewInputParser().LoadConstraints(writeFile(t, "bad.yaml", "max_budget: [1"))
	assert.Error(t, err)
}
