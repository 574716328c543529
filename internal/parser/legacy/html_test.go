package legacy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vplan/internal/config"
	"vplan/internal/diag"
	"vplan/internal/parser"
	"vplan/internal/plan"
)

func TestExtractTableBlanksEmptyCells(t *testing.T) {
	rows, err := ExtractTable(`<html><body><table>
		<tr><td>01.09.2024</td><td>&#160;</td><td>  </td><td>C12</td></tr>
	</table></body></html>`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"01.09.2024", "", "", "C12"}, rows[0])
}

func TestExtractTableWithoutTable(t *testing.T) {
	_, err := ExtractTable("<html><body><p>kein Plan</p></body></html>")
	assert.ErrorIs(t, err, parser.ErrStructural)
}

func parseHTML(t *testing.T, body string) (*parser.Result, *diag.Recorder) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.html")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	sink := diag.NewRecorder()
	p := NewHTML(config.DefaultConfig(), sink, path)
	p.Now = func() time.Time { return time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC) }

	result, err := parser.Run(p)
	require.NoError(t, err)
	return result, sink
}

func planRow(cells ...string) string {
	out := "<tr>"
	for _, c := range cells {
		out += "<td>" + c + "</td>"
	}
	return out + "</tr>"
}

func TestHTMLParseDiscardsHeaderRows(t *testing.T) {
	header := planRow("Vertretungsplan", "", "", "", "", "", "", "")
	data := planRow("01.09.2024", "3-4", "MUE", "MATH", "10a", "", "C12", "Aufgaben in Moodle")
	body := "<html><body><table>" + header + header + header + data + "</table></body></html>"

	result, _ := parseHTML(t, body)

	require.Len(t, result.Plan, 2)
	for i, rec := range result.Plan {
		assert.Equal(t, int(plan.PlanAdditional), rec.Type)
		assert.Equal(t, 3+i, rec.Hour)
		assert.Equal(t, "MUE", rec.Teacher)
		assert.Equal(t, "10a", rec.Course)
		assert.Equal(t, "Aufgaben in Moodle", rec.Notes)
	}
	require.Len(t, result.Classes, 1)
}

func TestHTMLParseOnlyHeaders(t *testing.T) {
	header := planRow("Vertretungsplan", "", "", "", "", "", "", "")
	body := "<html><body><table>" + header + header + header + "</table></body></html>"

	result, _ := parseHTML(t, body)
	assert.Empty(t, result.Plan)
}
