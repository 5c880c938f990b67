// Package sweep runs the optional scheduled maintenance job: flipping
// lapsed clients from ativo to vencido once their expiration date has
// passed, and purging expired sessions. The engine itself never derives
// status from the calendar, so without this job expired accounts stay
// ativo until an admin edits them; enabling the sweep changes what the
// dashboard's total_active and total_expired counts mean.
package sweep
