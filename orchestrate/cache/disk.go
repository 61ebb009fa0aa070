package cache

import (
	"os"
	"path/filepath"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// diskStore persists entries as one file per key under a directory, one struct per file.
// Entries are encoded with structpb so that the payload is self-describing: unknown or
// missing fields on read are a normal decode outcome rather than a corrupt blob, satisfying
// the "tagged encoding enabling schema-evolution detection" requirement. Any failure here
// is always treated as a miss by the caller — diskStore itself never panics or surfaces
// errors beyond returning them for counting purposes.
type diskStore struct {
	dir string
}

func newDiskStore(dir string) *diskStore {
	return &diskStore{dir: dir}
}

func (d *diskStore) path(key string) string {
	return filepath.Join(d.dir, key+".cache")
}

func (d *diskStore) save(e Entry) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Key: e.Key, Err: err}
	}

	s, err := structpb.NewStruct(map[string]any{
		"key":             e.Key,
		"task_id":         e.TaskID,
		"output":          e.Output,
		"agent_used":      e.AgentUsed,
		"created_at":      e.CreatedAt.Format(time.RFC3339Nano),
		"dependency_keys": toAnySlice(e.DependsOn),
	})
	if err != nil {
		return &IOError{Op: "encode", Key: e.Key, Err: err}
	}

	data, err := proto.Marshal(s)
	if err != nil {
		return &IOError{Op: "marshal", Key: e.Key, Err: err}
	}

	if err := os.WriteFile(d.path(e.Key), data, 0o644); err != nil {
		return &IOError{Op: "write", Key: e.Key, Err: err}
	}
	return nil
}

func (d *diskStore) load(key string) (Entry, time.Time, error) {
	p := d.path(key)
	data, err := os.ReadFile(p)
	if err != nil {
		return Entry{}, time.Time{}, &IOError{Op: "read", Key: key, Err: err}
	}

	info, err := os.Stat(p)
	if err != nil {
		return Entry{}, time.Time{}, &IOError{Op: "stat", Key: key, Err: err}
	}

	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return Entry{}, time.Time{}, &IOError{Op: "decode", Key: key, Err: err}
	}
	fields := s.GetFields()

	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"].GetStringValue())
	if err != nil {
		createdAt = info.ModTime()
	}

	entry := Entry{
		Key:        key,
		TaskID:     fields["task_id"].GetStringValue(),
		Output:     fields["output"].GetStringValue(),
		AgentUsed:  fields["agent_used"].GetStringValue(),
		CreatedAt:  createdAt,
		AccessedAt: info.ModTime(),
	}
	for _, v := range fields["dependency_keys"].GetListValue().GetValues() {
		entry.DependsOn = append(entry.DependsOn, v.GetStringValue())
	}
	return entry, info.ModTime(), nil
}

func (d *diskStore) remove(key string) error {
	err := os.Remove(d.path(key))
	if err != nil && !os.IsNotExist(err) {
		return &IOError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

func (d *diskStore) listKeys() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &IOError{Op: "readdir", Key: "", Err: err}
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		const suffix = ".cache"
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			keys = append(keys, name[:len(name)-len(suffix)])
		}
	}
	return keys, nil
}

func (d *diskStore) clear() error {
	keys, err := d.listKeys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		_ = d.remove(k)
	}
	return nil
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
