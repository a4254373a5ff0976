package storage

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/golang/snappy"

	"github.com/mockkp/simplekp/pkg/logging"
	"github.com/mockkp/simplekp/pkg/registry"
)

// Key layout in the embedded database:
//
//	node:<id>  snappy-compressed JSON of the Node
//	edge:<id>  snappy-compressed JSON of the Edge
//	meta:nodes snappy-compressed JSON list of node IDs in creation order
//	meta:edges snappy-compressed JSON list of edge IDs in creation order
//
// The meta keys preserve creation order across a restore; Badger iteration
// alone would only give lexicographic order.
const (
	nodeKeyPrefix = "node:"
	edgeKeyPrefix = "edge:"
	metaNodesKey  = "meta:nodes"
	metaEdgesKey  = "meta:edges"
)

func encodeRecord(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, raw), nil
}

func decodeRecord(data []byte, v any) error {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// writeSnapshot persists the loaded graph to the embedded database.
// Called under the write lock during Load.
func (gs *GraphStore) writeSnapshot() error {
	wb := gs.db.NewWriteBatch()
	defer wb.Cancel()

	for _, id := range gs.nodeOrder {
		data, err := encodeRecord(gs.nodes[id])
		if err != nil {
			return SnapshotError("writeSnapshot", "node "+id, err)
		}
		if err := wb.Set([]byte(nodeKeyPrefix+id), data); err != nil {
			return SnapshotError("writeSnapshot", "node "+id, err)
		}
	}
	for _, id := range gs.edgeOrder {
		data, err := encodeRecord(gs.edges[id])
		if err != nil {
			return SnapshotError("writeSnapshot", "edge "+id, err)
		}
		if err := wb.Set([]byte(edgeKeyPrefix+id), data); err != nil {
			return SnapshotError("writeSnapshot", "edge "+id, err)
		}
	}

	for key, order := range map[string][]string{
		metaNodesKey: gs.nodeOrder,
		metaEdgesKey: gs.edgeOrder,
	} {
		data, err := encodeRecord(order)
		if err != nil {
			return SnapshotError("writeSnapshot", key, err)
		}
		if err := wb.Set([]byte(key), data); err != nil {
			return SnapshotError("writeSnapshot", key, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return SnapshotError("writeSnapshot", "flush", err)
	}
	return nil
}

// readSnapshot reconstructs a KnowledgeGraph from the embedded database.
func readSnapshot(db *badger.DB) (*KnowledgeGraph, error) {
	graph := &KnowledgeGraph{}

	err := db.View(func(txn *badger.Txn) error {
		var nodeOrder, edgeOrder []string
		if err := readMeta(txn, metaNodesKey, &nodeOrder); err != nil {
			return err
		}
		if err := readMeta(txn, metaEdgesKey, &edgeOrder); err != nil {
			return err
		}

		for _, id := range nodeOrder {
			var node Node
			if err := readRecord(txn, nodeKeyPrefix+id, &node); err != nil {
				return err
			}
			graph.Nodes = append(graph.Nodes, &node)
		}
		for _, id := range edgeOrder {
			var edge Edge
			if err := readRecord(txn, edgeKeyPrefix+id, &edge); err != nil {
				return err
			}
			graph.Edges = append(graph.Edges, &edge)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return graph, nil
}

func readMeta(txn *badger.Txn, key string, out *[]string) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return SnapshotError("readSnapshot", key, err)
	}
	return item.Value(func(val []byte) error {
		return decodeRecord(val, out)
	})
}

func readRecord(txn *badger.Txn, key string, out any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return SnapshotError("readSnapshot", key, err)
	}
	return item.Value(func(val []byte) error {
		if err := decodeRecord(val, out); err != nil {
			return SnapshotError("readSnapshot", fmt.Sprintf("decode %s", key), err)
		}
		return nil
	})
}

// OpenExisting opens a store from a previously persisted data directory,
// rebuilding the in-memory indexes from the embedded database file.
func OpenExisting(cfg StoreConfig) (*GraphStore, error) {
	if cfg.DataDir == "" {
		return nil, SnapshotError("OpenExisting", "", fmt.Errorf("data directory required"))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	opts := badger.DefaultOptions(cfg.DataDir).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, SnapshotError("OpenExisting", cfg.DataDir, err)
	}

	graph, err := readSnapshot(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	gs := &GraphStore{
		nodes:           make(map[string]*Node),
		edges:           make(map[string]*Edge),
		nodesByCategory: make(map[registry.Category][]string),
		outgoing:        make(map[string][]string),
		incoming:        make(map[string][]string),
		logger:          logger,
		metrics:         cfg.Metrics,
	}
	gs.db = db

	// Rebuild indexes through the normal load path, then attach the DB.
	// The snapshot is already on disk, so skip rewriting it.
	dbHandle := gs.db
	gs.db = nil
	if err := gs.Load(graph); err != nil {
		dbHandle.Close()
		return nil, err
	}
	gs.db = dbHandle

	return gs, nil
}
