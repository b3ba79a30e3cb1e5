package business

import (
	"context"
	"fmt"
	"strings"

	"github.com/byggassist/backend/tool"
)

type UpdateProjectInput struct {
	ProjectID         string `json:"projectId"`
	Description       string `json:"description,omitempty"`
	Status            string `json:"status,omitempty" jsonschema:"enum=active,enum=paused,enum=done"`
	AppendDescription *bool  `json:"appendDescription,omitempty"`
}

type UpdateProjectOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func updateProjectTool(svc *Services) tool.Tool {
	return tool.NewTool("updateProject",
		"Update a project's description and/or status. By default new description text is appended to the existing one.",
		func(ctx context.Context, caller tool.Identity, input UpdateProjectInput) (UpdateProjectOutput, error) {
			project, err := svc.Store.Projects.Get(ctx, input.ProjectID)
			if err != nil {
				return UpdateProjectOutput{}, fmt.Errorf("look up project: %w", err)
			}

			var changes []string

			if input.Description != "" {
				appendDesc := input.AppendDescription == nil || *input.AppendDescription
				if appendDesc && project.Description != "" {
					project.Description = project.Description + "\n" + input.Description
				} else {
					project.Description = input.Description
				}
				changes = append(changes, "description")
			}

			if input.Status != "" {
				project.Status = input.Status
				changes = append(changes, "status")
			}

			if len(changes) == 0 {
				return UpdateProjectOutput{
					Success: false,
					Message: "Nothing to update: provide a description or a status",
				}, nil
			}

			if err := svc.Store.Projects.Update(ctx, project); err != nil {
				return UpdateProjectOutput{}, fmt.Errorf("update project: %w", err)
			}

			return UpdateProjectOutput{
				Success: true,
				Message: fmt.Sprintf("Updated %s of project %s", strings.Join(changes, " and "), project.Name),
			}, nil
		})
}
