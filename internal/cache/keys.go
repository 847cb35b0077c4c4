package cache

const keyPrefix = "proficiency:"

func ReportKey(sessionID string) string {
	return keyPrefix + "report:" + sessionID
}

func InviteReportKey(inviteID string) string {
	return keyPrefix + "invite-report:" + inviteID
}

func DashboardKey() string {
	return keyPrefix + "dashboard"
}

// InviteReportPattern matches every cached invite report.
func InviteReportPattern() string {
	return keyPrefix + "invite-report:*"
}
