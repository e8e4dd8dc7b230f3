package cluster

import "testing"

const sampleConfig = `
alpha:
  hosts:
    - id: host-1
      addr: 127.0.0.1:6379
    - id: host-2
      addr: 127.0.0.1:6380
      auth: s3cret
beta:
  hosts:
    - id: host-3
      addr: 127.0.0.1:6381
`

func TestParseConfigReadsNamedClusters(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	alpha, err := cfg.Pool("alpha")
	if err != nil {
		t.Fatalf("Pool(alpha) failed: %v", err)
	}
	if len(alpha.Hosts) != 2 {
		t.Fatalf("expected 2 hosts in alpha, got %d", len(alpha.Hosts))
	}
	if alpha.Hosts[0].ID != "host-1" || alpha.Hosts[0].Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected first host: %+v", alpha.Hosts[0])
	}
	if alpha.Hosts[1].Auth != "s3cret" {
		t.Fatalf("expected auth on host-2, got %+v", alpha.Hosts[1])
	}

	beta, err := cfg.Pool("beta")
	if err != nil {
		t.Fatalf("Pool(beta) failed: %v", err)
	}
	if len(beta.Hosts) != 1 {
		t.Fatalf("expected 1 host in beta, got %d", len(beta.Hosts))
	}
}

func TestConfigPoolUnknownNameFails(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if _, err := cfg.Pool("gamma"); err == nil {
		t.Fatalf("expected an error for an unknown cluster name")
	}
}

func TestParseConfigRejectsMalformedYAML(t *testing.T) {
	if _, err := ParseConfig([]byte("alpha: [this is not a cluster config")); err == nil {
		t.Fatalf("expected a parse error for malformed YAML")
	}
}
