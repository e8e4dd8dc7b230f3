// Command example demonstrates wiring github.com/txodds/rb end to end: a
// YAML cluster config, the default RESP2 connection pool, a synchronous
// RoutingClient call, and a batched Map session. It is the direct
// successor of the pack's own BLPOP-loop demo, generalized from one
// Twemproxy pool to the library's own cluster/respconn packages.
package main

import (
	"fmt"
	"time"

	"github.com/txodds/rb"
	"github.com/txodds/rb/cluster"
	"github.com/txodds/rb/respconn"
)

const (
	confPath    = "./cluster.yaml"
	clusterName = "alpha"
)

func main() {
	cfg, err := cluster.LoadConfig(confPath)
	if err != nil {
		panic(err)
	}
	clusterCfg, err := cfg.Pool(clusterName)
	if err != nil {
		panic(err)
	}

	backend, err := cluster.New(clusterCfg, respconn.Factory(2*time.Second, 3, 240*time.Second))
	if err != nil {
		panic(err)
	}
	defer backend.DisconnectAll()

	client := rb.NewRoutingClient(backend, backend.Router(), true)

	fmt.Println("Waiting for list items...")
	for {
		v, err := client.Execute("BLPOP", rb.Args1("test:list"), rb.Args1("10"))
		if err != nil {
			panic(err)
		}
		fmt.Println(v)

		runBatch(client)
	}
}

// runBatch shows the pipelining path: a handful of GETs across the
// cluster, fused into MGETs where consecutive and run in one Join.
func runBatch(client *rb.RoutingClient) {
	timeout := 2 * time.Second
	err := client.Map(&timeout).Run(func(m *rb.MappingClient) error {
		keys := []string{"a", "b", "c"}
		promises := make([]*rb.Promise[any], 0, len(keys))
		for _, k := range keys {
			p, err := m.Execute("GET", rb.Args1(k))
			if err != nil {
				return err
			}
			promises = append(promises, p)
		}
		for i, p := range promises {
			i := i
			p.OnSuccess(func(v any) {
				fmt.Printf("batch[%d] = %v\n", i, v)
			})
		}
		return nil
	})
	if err != nil {
		fmt.Println("batch failed:", err)
	}
}
