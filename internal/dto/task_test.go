package dto

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workspace-management-api/internal/models"
)

func TestToTaskListResponse_TotalPages(t *testing.T) {
	tasks := []models.Task{{ID: 1, Name: "Task"}}

	response := ToTaskListResponse(tasks, 1, 20, 41)
	require.Equal(t, 3, response.TotalPages)
	require.EqualValues(t, 41, response.TotalCount)

	response = ToTaskListResponse(tasks, 1, 20, 40)
	require.Equal(t, 2, response.TotalPages)
}

func TestToTaskListResponse_ZeroPageSize(t *testing.T) {
	response := ToTaskListResponse(nil, 0, 0, 5)
	require.Equal(t, 0, response.TotalPages)
	require.Empty(t, response.Tasks)
}
