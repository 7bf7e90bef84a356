package commands_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massikone/massikone/internal/commands"
	"github.com/massikone/massikone/internal/config"
	"github.com/massikone/massikone/internal/history"
	"github.com/massikone/massikone/internal/id"
	"github.com/massikone/massikone/internal/model"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

// books initializes books in a temp dir and returns a runner bound to its
// config.
func books(t *testing.T) (string, func(args ...string) (string, error)) {
	t.Helper()
	dir := t.TempDir()
	_, err := run(t, "init", dir, "--name", "Kerho ry", "--start", "1.1.2025", "--end", "31.12.2025")
	require.NoError(t, err)
	cfgPath := filepath.Join(dir, config.FileName)
	return dir, func(args ...string) (string, error) {
		return run(t, append([]string{"--config", cfgPath}, args...)...)
	}
}

func mustRun(t *testing.T, runner func(args ...string) (string, error), args ...string) string {
	t.Helper()
	out, err := runner(args...)
	require.NoError(t, err, "massikone %s: %s", strings.Join(args, " "), out)
	return out
}

func TestInit_CreatesProject(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "init", dir, "--name", "Kerho ry", "--start", "1.1.2025", "--end", "2025-12-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized books for Kerho ry")

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "Kerho ry", cfg.Organization.FullName)
	assert.Equal(t, "2025-01-01", cfg.Period.Start)
	assert.Equal(t, "2025-12-31", cfg.Period.End)
	assert.Equal(t, "chart-of-accounts.txt", cfg.Chart.Path)

	chart, err := os.ReadFile(filepath.Join(dir, "chart-of-accounts.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(chart), "row_type;account_id;title;extra_field\n"))

	gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "massikone.db\n.env\n", string(gitignore))

	_, err = os.Stat(filepath.Join(dir, "massikone.db"))
	assert.NoError(t, err)
}

func TestInit_Git(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	out, err := run(t, "init", dir, "--name", "Kerho ry", "--git")
	require.NoError(t, err)
	assert.Contains(t, out, "Committed ")

	ls := exec.Command("git", "ls-files")
	ls.Dir = dir
	files, err := ls.Output()
	require.NoError(t, err)
	assert.Equal(t, ".gitignore\nchart-of-accounts.txt\nmassikone.yaml\n", string(files))
}

func TestInit_Errors(t *testing.T) {
	t.Run("twice", func(t *testing.T) {
		dir := t.TempDir()
		_, err := run(t, "init", dir, "--name", "Kerho ry")
		require.NoError(t, err)
		_, err = run(t, "init", dir, "--name", "Kerho ry")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
	t.Run("name required", func(t *testing.T) {
		_, err := run(t, "init", t.TempDir())
		require.Error(t, err)
	})
	t.Run("bad date", func(t *testing.T) {
		_, err := run(t, "init", t.TempDir(), "--name", "Kerho ry", "--start", "1.13.2025")
		require.Error(t, err)
	})
}

func TestAccounts(t *testing.T) {
	_, massikone := books(t)

	out := mustRun(t, massikone, "accounts")
	assert.Contains(t, out, "1910 Pankkitili\n")
	assert.Contains(t, out, "4300 Matkakulut\n")
	assert.Contains(t, out, "VASTAAVAA")

	mustRun(t, massikone, "user", "add", "--email", "anna@example.com", "--name", "anna virtanen")
	mustRun(t, massikone, "bill", "add", "--description", "Junaliput", "--paid-date", "3.1.2025",
		"--amount", "42,50", "--debit", "4300", "--credit", "2950")

	out = mustRun(t, massikone, "accounts", "--used")
	assert.Contains(t, out, "4300 Matkakulut")
	assert.Contains(t, out, "2950 Kulukorvausvelat")
	assert.NotContains(t, out, "1910 Pankkitili")
}

func TestUsers(t *testing.T) {
	_, massikone := books(t)

	_, err := massikone("bill", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no users yet")

	out := mustRun(t, massikone, "user", "add", "--email", "anna@example.com", "--name", "anna virtanen")
	assert.Equal(t, "Added admin 1 Anna Virtanen <anna@example.com>\n", out)
	out = mustRun(t, massikone, "user", "add", "--email", "pekka@example.com", "--name", "Pekka Mäkinen")
	assert.Equal(t, "Added user 2 Pekka Mäkinen <pekka@example.com>\n", out)

	_, err = massikone("user", "add", "--email", "anna@example.com", "--name", "Anna Toinen")
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)

	out = mustRun(t, massikone, "user", "list")
	assert.Equal(t, "1 Anna Virtanen <anna@example.com> (admin)\n2 Pekka Mäkinen <pekka@example.com>\n", out)
}

func TestBillLifecycle(t *testing.T) {
	_, massikone := books(t)
	mustRun(t, massikone, "user", "add", "--email", "anna@example.com", "--name", "Anna Virtanen")

	out := mustRun(t, massikone, "bill", "add", "--description", "Junaliput\nTampere", "--paid-date", "3.1.2025",
		"--amount", "42,50", "--debit", "4300", "--credit", "2950", "--tag", "matkat")
	assert.Equal(t, "Created bill 1\n", out)

	out = mustRun(t, massikone, "bill", "show", "1")
	assert.Contains(t, out, "Paid:        3.1.2025 Anna Virtanen\n")
	assert.Contains(t, out, "Amount:      42,50\n")
	assert.Contains(t, out, "Debit:       4300 Matkakulut\n")
	assert.Contains(t, out, "Credit:      2950 Kulukorvausvelat\n")
	assert.Contains(t, out, "Tags:        matkat\n")

	mustRun(t, massikone, "bill", "update", "1", "--amount", "50,00")
	out = mustRun(t, massikone, "bill", "show", "1")
	assert.Contains(t, out, "Amount:      50,00\n")
	assert.Contains(t, out, "Debit:       4300 Matkakulut\n")
	assert.Contains(t, out, "Tags:        matkat\n")

	out = mustRun(t, massikone, "bill", "list")
	assert.Contains(t, out, "Junaliput")
	assert.NotContains(t, out, "Tampere")
	assert.Contains(t, out, "50,00")
	assert.Contains(t, out, "[matkat]")
	assert.True(t, strings.HasPrefix(out, "!"), "bill without image is flagged: %q", out)

	out = mustRun(t, massikone, "bill", "history", "1")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, history.Header, lines[0])
	assert.Contains(t, lines[1], ",1,create,1,")
	assert.Contains(t, lines[2], ",1,update,1,")

	_, err := massikone("bill", "show", "7")
	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestBillNonAdmin(t *testing.T) {
	_, massikone := books(t)
	mustRun(t, massikone, "user", "add", "--email", "anna@example.com", "--name", "Anna Virtanen")
	mustRun(t, massikone, "user", "add", "--email", "pekka@example.com", "--name", "Pekka Mäkinen")
	mustRun(t, massikone, "bill", "add", "--description", "Kahvit", "--amount", "5,00", "--debit", "4300", "--credit", "2950")

	var perr *model.PermissionError

	_, err := massikone("--user", "pekka@example.com", "bill", "add", "--amount", "10,00", "--debit", "4300", "--credit", "2950")
	require.ErrorAs(t, err, &perr)

	_, err = massikone("--user", "pekka@example.com", "bill", "update", "1", "--description", "Minun")
	require.ErrorAs(t, err, &perr)

	out := mustRun(t, massikone, "--user", "pekka@example.com", "bill", "add", "--description", "Taksi", "--amount", "18,00")
	assert.Equal(t, "Created bill 2\n", out)
	mustRun(t, massikone, "--user", "pekka@example.com", "bill", "update", "2", "--amount", "19,00")

	out = mustRun(t, massikone, "--user", "pekka@example.com", "bill", "list")
	assert.Contains(t, out, "Taksi")
	assert.Contains(t, out, "19,00")
	assert.NotContains(t, out, "Kahvit")

	_, err = massikone("--user", "pekka@example.com", "tags", "set", "matkat")
	require.ErrorAs(t, err, &perr)
}

func TestBillImages(t *testing.T) {
	dir, massikone := books(t)
	mustRun(t, massikone, "user", "add", "--email", "anna@example.com", "--name", "Anna Virtanen")

	png := append([]byte("\x89PNG\r\n\x1a\n"), []byte("not really pixels")...)
	imgPath := filepath.Join(dir, "kuitti.png")
	require.NoError(t, os.WriteFile(imgPath, png, 0o644))
	imageID, err := id.ImageID(png, id.FormatPNG)
	require.NoError(t, err)

	mustRun(t, massikone, "bill", "add", "--description", "Kuitillinen", "--image", imgPath)
	mustRun(t, massikone, "bill", "add", "--description", "Kuititon")

	out := mustRun(t, massikone, "bill", "images")
	assert.Equal(t, "1-1  "+imageID+"  Kuitillinen\nMissing images: 2\n", out)

	exported := filepath.Join(dir, "export.png")
	mustRun(t, massikone, "bill", "image", imageID, "-o", exported)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Equal(t, png, data)

	_, err = massikone("bill", "image", "nope.png")
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestTags(t *testing.T) {
	_, massikone := books(t)
	mustRun(t, massikone, "user", "add", "--email", "anna@example.com", "--name", "Anna Virtanen")

	assert.Empty(t, mustRun(t, massikone, "tags"))
	mustRun(t, massikone, "tags", "set", "matkat", "kokous", "matkat")
	assert.Equal(t, "kokous\nmatkat\n", mustRun(t, massikone, "tags"))
}

func TestBalancesAndReports(t *testing.T) {
	dir, massikone := books(t)
	mustRun(t, massikone, "user", "add", "--email", "anna@example.com", "--name", "Anna Virtanen")
	mustRun(t, massikone, "bill", "add", "--description", "Junaliput", "--paid-date", "3.1.2025",
		"--amount", "42,50", "--debit", "4300", "--credit", "2950")

	out := mustRun(t, massikone, "balances")
	assert.Contains(t, out, "4300  Matkakulut")
	assert.Contains(t, out, "Tilikauden tulos")
	assert.Contains(t, out, "-42,50")

	out = mustRun(t, massikone, "report", "income-statement", "--detailed")
	assert.True(t, strings.HasPrefix(out, "Tuloslaskelma erittelyin"), out)
	assert.Contains(t, out, "4300 Matkakulut")
	assert.Contains(t, out, "Tilikauden tulos")

	out = mustRun(t, massikone, "report", "journal", "--csv")
	assert.Contains(t, out, "2025-01-03")
	assert.Contains(t, out, "42,50")

	out = mustRun(t, massikone, "report", "balance-sheet", "--out", filepath.Join(dir, "out"))
	path := filepath.Join(dir, "out", "kerho-ry-2025-tase.txt")
	assert.Equal(t, "Wrote "+path+"\n", out)
	_, err := os.Stat(path)
	assert.NoError(t, err)

	for _, name := range []string{"ledger", "chart"} {
		out = mustRun(t, massikone, "report", name)
		assert.NotEmpty(t, out, name)
	}

	_, err = massikone("report", "ledger", "--csv")
	require.Error(t, err)
	_, err = massikone("report", "cash-flow")
	require.Error(t, err)
}

func TestCompare(t *testing.T) {
	dir, massikone := books(t)
	mustRun(t, massikone, "user", "add", "--email", "anna@example.com", "--name", "Anna Virtanen")
	mustRun(t, massikone, "bill", "add", "--description", "Junaliput", "--paid-date", "3.1.2025",
		"--amount", "42,50", "--debit", "4300", "--credit", "2950")

	bank := "Kirjauspäivä;Määrä;Saaja/Maksaja;Viesti\n" +
		"3.1.2025;-42,50;VR-Yhtymä Oyj;Junaliput\n" +
		"5.1.2025;+1 200,00;Kerho ry;Jäsenmaksut\n"
	bankPath := filepath.Join(dir, "pankki.csv")
	require.NoError(t, os.WriteFile(bankPath, []byte(bank), 0o644))

	out := mustRun(t, massikone, "compare", bankPath)
	assert.Contains(t, out, "  3.1.2025         42,50  Massikone  #1 Junaliput\n")
	assert.Contains(t, out, "  3.1.2025         42,50  Pankki     Junaliput\n")
	assert.Contains(t, out, "! 5.1.2025       1200,00  Pankki     Jäsenmaksut\n")
	assert.Contains(t, out, "1 bills, 2 bank rows, 1 rows without a match\n")

	_, err := massikone("compare", bankPath, "--format", "mt940")
	require.Error(t, err)
}
