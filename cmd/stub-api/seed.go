package main

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/ignite/phishing-dashboard/internal/domain"
)

// departmentRisk is the base click propensity per department.
var departmentRisk = []struct {
	name string
	risk float64
}{
	{"IT Department", 0.10},
	{"HR", 0.22},
	{"Finance", 0.35},
	{"Sales", 0.20},
	{"Marketing", 0.15},
	{"Operations", 0.18},
	{"Legal", 0.40},
	{"Executive", 0.45},
}

var templateLift = map[domain.TemplateType]float64{
	domain.TemplateUrgentAction:   1.3,
	domain.TemplateSecurityAlert:  1.1,
	domain.TemplatePasswordExpiry: 1.0,
	domain.TemplateSystemUpdate:   0.7,
}

var templateSubjects = map[domain.TemplateType]string{
	domain.TemplateUrgentAction:   "Action required: invoice overdue",
	domain.TemplateSecurityAlert:  "Unusual sign-in activity detected",
	domain.TemplatePasswordExpiry: "Your password expires today",
	domain.TemplateSystemUpdate:   "Scheduled maintenance this weekend",
}

var (
	firstNames = []string{"Alice", "Bob", "Carmen", "Dev", "Elena", "Farid", "Grace", "Hiro", "Ines", "Jonas", "Kemi", "Liam", "Mara", "Nils", "Olga", "Priya"}
	lastNames  = []string{"Smith", "Okafor", "Lindqvist", "Patel", "Moreau", "Tanaka", "Silva", "Novak", "Reyes", "Brennan"}
)

// seedData builds a reproducible organization with six weeks of simulated
// phishing emails ending at now.
func seedData(seed int64, usersPerDept int, now time.Time) *backend {
	rng := rand.New(rand.NewSource(seed))
	b := newBackend(func() time.Time { return now })

	var userID, logID int64
	for i, d := range departmentRisk {
		dept := domain.Department{ID: int64(i + 1), Name: d.name}
		b.departments = append(b.departments, dept)

		for j := 0; j < usersPerDept; j++ {
			userID++
			name := fmt.Sprintf("%s %s", firstNames[rng.Intn(len(firstNames))], lastNames[rng.Intn(len(lastNames))])
			user := domain.User{
				ID:           userID,
				Name:         name,
				Email:        fmt.Sprintf("%s.%d@example.com", strings.ToLower(strings.ReplaceAll(name, " ", ".")), userID),
				DepartmentID: dept.ID,
			}
			if rng.Float64() < 0.3 {
				at := now.Add(-time.Duration(rng.Intn(30*24)) * time.Hour)
				user.TrainingCompleted = true
				user.TrainingCompletedAt = &at
			}
			b.users = append(b.users, user)

			for week := 0; week < 6; week++ {
				perWeek := 1 + rng.Intn(2)
				for k := 0; k < perWeek; k++ {
					logID++
					tmpl := domain.KnownTemplates[rng.Intn(len(domain.KnownTemplates))]
					sent := now.Add(-time.Duration(week*7*24+rng.Intn(7*24)) * time.Hour)
					log := domain.EmailLog{
						ID:           logID,
						UserID:       userID,
						Subject:      templateSubjects[tmpl],
						TemplateType: tmpl,
						SentAt:       sent,
					}
					if rng.Float64() < d.risk*templateLift[tmpl] {
						clicked := sent.Add(time.Duration(1+rng.Intn(180)) * time.Minute)
						log.Clicked, log.ClickedAt = true, &clicked
						if rng.Float64() < 0.4 {
							responded := clicked.Add(time.Duration(1+rng.Intn(30)) * time.Minute)
							log.Responded, log.RespondedAt = true, &responded
						}
					}
					b.logs = append(b.logs, log)
				}
			}
		}
	}
	return b
}
