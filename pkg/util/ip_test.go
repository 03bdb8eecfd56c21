package util

import "testing"

func TestIsValidIPv4(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"10.0.0.1", true},
		{"192.168.1.255", true},
		{"256.0.0.1", false},
		{"10.0.0", false},
		{"::1", false},
		{"::ffff:10.0.0.1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidIPv4(tt.ip); got != tt.want {
			t.Errorf("IsValidIPv4(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}

func TestNormalizeNetmask(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"255.255.255.0", "255.255.255.0", false},
		{"24", "255.255.255.0", false},
		{"/30", "255.255.255.252", false},
		{"0", "0.0.0.0", false},
		{"32", "255.255.255.255", false},
		{"33", "", true},
		{"255.0.255.0", "", true},
		{"abc", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeNetmask(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeNetmask(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeNetmask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNetmaskToPrefixLen(t *testing.T) {
	n, err := NetmaskToPrefixLen("255.255.240.0")
	if err != nil {
		t.Fatalf("NetmaskToPrefixLen error = %v", err)
	}
	if n != 20 {
		t.Errorf("NetmaskToPrefixLen = %d, want 20", n)
	}
}

func TestFormatPrefix(t *testing.T) {
	tests := []struct {
		addr, mask, want string
	}{
		{"10.0.0.0", "255.0.0.0", "10.0.0.0/8"},
		{"10.1.1.1", "", "10.1.1.1"},
		{"10.1.1.1", "bogus", "10.1.1.1/bogus"},
	}
	for _, tt := range tests {
		if got := FormatPrefix(tt.addr, tt.mask); got != tt.want {
			t.Errorf("FormatPrefix(%q, %q) = %q, want %q", tt.addr, tt.mask, got, tt.want)
		}
	}
}
