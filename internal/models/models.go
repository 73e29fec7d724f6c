package models

// All lists every table managed by the application, parents before children.
func All() []interface{} {
	return []interface{}{
		&User{},
		&MembershipPlan{},
		&Member{},
		&Payment{},
		&MembershipHistory{},
		&CafeProduct{},
		&CafeOrder{},
		&CafeOrderItem{},
		&Notification{},
		&NotificationLog{},
		&ActivityLog{},
	}
}
