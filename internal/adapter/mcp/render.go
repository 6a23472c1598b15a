package mcp

import (
	"fmt"
	"strconv"
	"strings"

	"todohub/internal/core/domain"
)

const timeLayout = "2006-01-02 15:04:05"

func renderList(todos []domain.Todo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Found %d todos:\n\n", len(todos))

	for i, todo := range todos {
		if i > 0 {
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "• %s (ID: %d, Status: %s, Priority: %d)", todo.Title, todo.ID, todo.Status, todo.Priority)
	}

	return b.String()
}

func renderDetails(todo domain.Todo) string {
	return fmt.Sprintf("Todo Details:\n"+
		"• ID: %d\n"+
		"• Title: %s\n"+
		"• Description: %s\n"+
		"• Status: %s\n"+
		"• Priority: %d\n"+
		"• Created: %s\n"+
		"• Updated: %s",
		todo.ID,
		todo.Title,
		todo.DescriptionOrFallback("No description"),
		todo.Status,
		todo.Priority,
		todo.CreatedAt.Format(timeLayout),
		todo.UpdatedAt.Format(timeLayout),
	)
}

func renderSaved(headline string, todo domain.Todo) string {
	return fmt.Sprintf("✅ %s\n• ID: %d\n• Title: %s\n• Status: %s\n• Priority: %d",
		headline, todo.ID, todo.Title, todo.Status, todo.Priority)
}

func renderStatusChanged(todo domain.Todo) string {
	return fmt.Sprintf("✅ Todo status updated to '%s'!\n• ID: %d\n• Title: %s\n• New Status: %s",
		todo.Status, todo.ID, todo.Title, todo.Status)
}

func renderDeleted(id int) string {
	return fmt.Sprintf("✅ Todo with ID %d deleted successfully", id)
}

func renderNotFound(id int) string {
	return fmt.Sprintf("Todo with ID %d not found", id)
}

func renderSearch(query string, todos []domain.Todo) string {
	if len(todos) == 0 {
		return fmt.Sprintf("No todos found matching '%s'", query)
	}

	lines := make([]string, 0, len(todos))

	for _, todo := range todos {
		lines = append(lines, fmt.Sprintf("• %s (ID: %d, Status: %s)", todo.Title, todo.ID, todo.Status))
	}

	return fmt.Sprintf("Search results for '%s' (%d found):\n\n%s", query, len(todos), strings.Join(lines, "\n"))
}

func renderStats(stats domain.TodoStats) string {
	return fmt.Sprintf("📊 Todo Statistics:\n"+
		"• Total todos: %d\n"+
		"• Pending: %d\n"+
		"• In Progress: %d\n"+
		"• Completed: %d\n"+
		"• Completion Rate: %s%%",
		stats.Total,
		stats.Pending,
		stats.InProgress,
		stats.Completed,
		formatRate(stats),
	)
}

// formatRate prints 0 for an empty collection and otherwise keeps at least
// one decimal, so 50 reads "50.0".
func formatRate(stats domain.TodoStats) string {
	if stats.Total == 0 {
		return "0"
	}

	rate := strconv.FormatFloat(stats.CompletionRate, 'f', -1, 64)
	if !strings.Contains(rate, ".") {
		rate += ".0"
	}

	return rate
}
