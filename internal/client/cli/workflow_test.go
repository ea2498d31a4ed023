package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowCommands(t *testing.T) {
	e := newCLIEnv(t)
	e.login(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "tasks",
			args:     []string{"tasks"},
			contains: []string{`"path": "/workflow/tasks/my_tasks/"`},
		},
		{
			name:     "start task",
			args:     []string{"tasks", "start", "7"},
			contains: []string{`"path": "/workflow/tasks/7/start/"`},
		},
		{
			name:     "complete task",
			args:     []string{"tasks", "complete", "7", "-n", "done"},
			contains: []string{`"path": "/workflow/tasks/7/complete/"`, `"notes": "done"`},
		},
		{
			name:     "approvals",
			args:     []string{"approvals"},
			contains: []string{`"path": "/workflow/approvals/my_pending/"`},
		},
		{
			name:     "approve",
			args:     []string{"approve", "4", "-c", "looks good"},
			contains: []string{`"path": "/workflow/approvals/4/approve/"`, `"comments": "looks good"`},
		},
		{
			name:     "reject",
			args:     []string{"reject", "4"},
			contains: []string{`"path": "/workflow/approvals/4/reject/"`},
		},
		{
			name:     "notifications unread",
			args:     []string{"notifications", "--unread"},
			contains: []string{"Unread: 0", `"query": "unread=true"`},
		},
		{
			name:     "mark one read",
			args:     []string{"notifications", "read", "9"},
			contains: []string{"✓ Notification 9 marked as read"},
		},
		{
			name:     "mark all read",
			args:     []string{"notifications", "read", "--all"},
			contains: []string{"✓ All notifications marked as read"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.out.Reset()
			code, stderr := e.run(t, tt.args...)
			require.Equal(t, 0, code, stderr)
			for _, want := range tt.contains {
				assert.Contains(t, e.out.String(), want)
			}
		})
	}

	assert.Equal(t, 1, e.srv.Hits("POST", "/notifications/notifications/mark_all_read/"))
}

func TestDashboard_UsesCurrentOrganization(t *testing.T) {
	e := newCLIEnv(t)
	e.login(t)

	code, stderr := e.run(t, "dashboard")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, e.out.String(), `"query": ""`)

	code, stderr = e.run(t, "prefs", "org", `{"id":5,"name":"Head Office","name_ar":"المكتب الرئيسي"}`)
	require.Equal(t, 0, code, stderr)

	e.out.Reset()
	code, stderr = e.run(t, "dashboard")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, e.out.String(), "Organization: Head Office")
	assert.Contains(t, e.out.String(), `"query": "organization=5"`)
}

func TestWorkflowCommands_RequireLogin(t *testing.T) {
	e := newCLIEnv(t)

	for _, args := range [][]string{{"tasks"}, {"approvals"}, {"approve", "1"}, {"notifications"}, {"dashboard"}} {
		code, stderr := e.run(t, args...)
		assert.Equal(t, 1, code, args)
		assert.Contains(t, stderr, ErrNotAuthenticated.Error(), args)
	}
}
