package recon

import "testing"

func TestSimilarity_ExactAfterNormalization(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"Cash", "Cash"},
		{"Cash", "  CASH  "},
		{"Caixa Econômica", "CAIXA ECONOMICA"},
		{"Accounts  Receivable", "Accounts Receivable"},
	}
	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); got != 100 {
			t.Errorf("similarity(%q, %q) = %d, want 100", tt.a, tt.b, got)
		}
	}
}

func TestSimilarity_ScenarioA(t *testing.T) {
	got := similarity("Cash and Cash Equivalents", "Cash & Cash Equivalents")
	if got < 80 {
		t.Errorf("similarity = %d, want >= 80", got)
	}
}

func TestSimilarity_ReorderingInvariance(t *testing.T) {
	reordered := similarity("Cash and Bank", "Bank and Cash")
	unrelated := similarity("Cash and Bank", "Totally Unrelated Term")

	if reordered != 100 {
		t.Errorf("similarity of reordered word sets = %d, want 100", reordered)
	}
	if reordered < unrelated {
		t.Errorf("reordered score %d < unrelated score %d", reordered, unrelated)
	}

	// full permutation of the same word set
	if got := similarity("Cash and Cash Equivalents", "Equivalents, Cash and Cash"); got != 100 {
		t.Errorf("similarity of permuted name = %d, want 100", got)
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	a, b := "Accounts Receivable", "Receivables, Accounts"
	if similarity(a, b) != similarity(b, a) {
		t.Errorf("similarity is not symmetric for %q / %q", a, b)
	}
}

func TestSimilarity_Range(t *testing.T) {
	pairs := [][2]string{
		{"Cash", "Inventory"},
		{"", "Cash"},
		{"###", "$$$"},
		{"Prepaid Expenses", "Prepaid Expense"},
	}
	for _, p := range pairs {
		got := similarity(p[0], p[1])
		if got < 0 || got > 100 {
			t.Errorf("similarity(%q, %q) = %d, outside [0,100]", p[0], p[1], got)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Cash & Cash Equivalents  ", "CASH CASH EQUIVALENTS"},
		{"Provisão p/ Férias", "PROVISAO P FERIAS"},
		{"|Inventory|", "INVENTORY"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := normalizeName(tt.in); got != tt.want {
			t.Errorf("normalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSortTokens(t *testing.T) {
	if got := sortTokens("CASH AND BANK"); got != "AND BANK CASH" {
		t.Errorf("sortTokens = %q, want %q", got, "AND BANK CASH")
	}
	if got := sortTokens(""); got != "" {
		t.Errorf("sortTokens(\"\") = %q, want empty", got)
	}
}
