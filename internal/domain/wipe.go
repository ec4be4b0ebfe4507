package domain

// DeletedRecords counts the rows removed by a wipe.
type DeletedRecords struct {
	Users       int `json:"users"`
	Departments int `json:"departments"`
	EmailLogs   int `json:"email_logs"`
}

// Total returns the number of rows removed across all tables.
func (d DeletedRecords) Total() int {
	return d.Users + d.Departments + d.EmailLogs
}

// WipeResult is the outcome of wiping all simulation data.
type WipeResult struct {
	Message        string         `json:"message"`
	DeletedRecords DeletedRecords `json:"deleted_records"`
}
