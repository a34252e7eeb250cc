package config

import "testing"

func TestApprovalConfig_AutoApprove(t *testing.T) {
	tests := []struct {
		name string
		cfg  ApprovalConfig
		want bool
	}{
		{name: "unset defaults to true", cfg: ApprovalConfig{}, want: true},
		{name: "explicit true", cfg: ApprovalConfig{AutoApproveLowRisk: boolPtr(true)}, want: true},
		{name: "explicit false", cfg: ApprovalConfig{AutoApproveLowRisk: boolPtr(false)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.AutoApprove(); got != tt.want {
				t.Errorf("AutoApprove() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuditConfig_AuditEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  AuditConfig
		want bool
	}{
		{name: "unset defaults to true", cfg: AuditConfig{}, want: true},
		{name: "explicit true", cfg: AuditConfig{Enabled: boolPtr(true)}, want: true},
		{name: "explicit false", cfg: AuditConfig{Enabled: boolPtr(false)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.AuditEnabled(); got != tt.want {
				t.Errorf("AuditEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
