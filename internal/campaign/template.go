// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package campaign

import (
	"bytes"
	"strings"
	txttemplate "text/template"
	"time"

	"github.com/quixsi/muster/internal/model"
)

// Vars builds the closed placeholder set resolvable from one member
// record. Placeholders whose source field is unset are omitted, so a
// template referencing them fails that recipient's render.
func Vars(m *model.Member, baseURL string) map[string]string {
	vars := map[string]string{
		"FirstName":        m.FirstName,
		"LastName":         m.LastName,
		"MembershipNumber": m.MembershipNumber,
		"Region":           m.Region.String(),
		"Link":             strings.TrimSuffix(baseURL, "/") + "/r/" + m.Token.String(),
	}
	if m.AssignedVenue != "" {
		vars["Venue"] = m.AssignedVenue
	}
	if m.SessionAt != nil {
		vars["SessionTime"] = m.SessionAt.Format(time.RFC1123)
	}
	if m.SpecialVoteEligible {
		vars["SpecialVoteRationale"] = m.SpecialVoteRationale
	}
	return vars
}

// Render resolves one template against one recipient's variables. An
// unresolved placeholder is an error for this recipient only.
func Render(tmpl string, vars map[string]string) (string, error) {
	t, err := txttemplate.New("message").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}
