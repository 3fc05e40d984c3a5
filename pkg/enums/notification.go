package enums

// NotificationType categorizes in-app notifications.
type NotificationType string

const (
	NotificationTypeJobAssignment NotificationType = "job_assignment"
)

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}
