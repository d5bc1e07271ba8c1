package gitdiff

import "testing"

func TestParseNameStatus(t *testing.T) {
	output := "A\tfull-rules/ide/rulesets/03-new.mdc\n" +
		"M\tCHANGELOG.md\n" +
		"M\t.concise-rules/ide/03-new.mdc\n" +
		"D\told-rules/99-dead.md\n" +
		"R100\trenamed-from.md\trenamed-to.md\n"

	c := parseNameStatus(output)
	if len(c.Added) != 1 || c.Added[0] != "full-rules/ide/rulesets/03-new.mdc" {
		t.Errorf("added = %v", c.Added)
	}
	if len(c.Modified) != 2 {
		t.Errorf("modified = %v", c.Modified)
	}
	if len(c.Deleted) != 1 || c.Deleted[0] != "old-rules/99-dead.md" {
		t.Errorf("deleted = %v", c.Deleted)
	}
}

func TestParseNameStatus_Empty(t *testing.T) {
	c := parseNameStatus("")
	if len(c.Added)+len(c.Modified)+len(c.Deleted) != 0 {
		t.Errorf("changes = %+v, want empty", c)
	}
	if c.Added == nil || c.Modified == nil || c.Deleted == nil {
		t.Error("slices must be non-nil for stable JSON output")
	}
}

func TestAll(t *testing.T) {
	c := Changes{
		Added:    []string{"a.md"},
		Modified: []string{"b.md"},
		Deleted:  []string{"c.md"},
	}
	all := c.All()
	if len(all) != 2 || all[0] != "a.md" || all[1] != "b.md" {
		t.Errorf("All() = %v", all)
	}
}
