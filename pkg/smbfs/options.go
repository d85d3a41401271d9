package smbfs

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/smbvfs/smbvfs/internal/smbclient"
)

// Options is the typed form of the options map new_file_system accepts
// (spec §4.4, §6): credentials plus the watch-service knobs. Extra carries
// every key not recognized here, including anything under the SMB library's
// own configuration prefix, forwarded to the collaborator unexamined.
//
// Grounded on the teacher's pkg/config.Config: a mapstructure-tagged struct
// decoded from a generic map, with a decode hook for human-friendly
// durations (here, milliseconds-as-integer rather than the teacher's
// ByteSize/duration-string hooks, since spec §6 specifies the poll interval
// as integer milliseconds).
type Options struct {
	Domain   string `mapstructure:"domain"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	WatchServiceEnabled      bool          `mapstructure:"smb.watchservice.enabled"`
	WatchServicePollInterval time.Duration `mapstructure:"smb.watchservice.pollInterval"`

	Extra map[string]any `mapstructure:",remain"`
}

// DefaultPollInterval matches spec §6's documented default for
// smb.watchservice.pollInterval.
const DefaultPollInterval = 30 * time.Second

// ContextDefaults supplies the third tier of the authority-builder
// precedence chain (spec §4.3): credentials used when neither the URI nor
// the options map supplies any.
type ContextDefaults struct {
	Domain   string
	Username string
	Password string
}

// Credentials projects o's credential fields into smbclient.Credentials.
func (o Options) Credentials() smbclient.Credentials {
	return smbclient.Credentials{Domain: o.Domain, User: o.Username, Password: o.Password}
}

// DecodeOptions decodes a generic options map into an Options value,
// applying defaults for zero-valued watch-service fields. raw may be nil.
func DecodeOptions(raw map[string]any) (Options, error) {
	opts := Options{WatchServicePollInterval: DefaultPollInterval}
	if len(raw) == 0 {
		return opts, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       millisDecodeHook(),
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return Options{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Options{}, err
	}

	if opts.WatchServicePollInterval <= 0 {
		opts.WatchServicePollInterval = DefaultPollInterval
	}
	return opts, nil
}

// millisDecodeHook converts an integer (or numeric string) option value into
// a time.Duration by treating it as a millisecond count, matching spec §6's
// "integer milliseconds" for smb.watchservice.pollInterval. A value that is
// already a duration-shaped string (e.g. "30s") is parsed as such.
func millisDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case int:
			return time.Duration(v) * time.Millisecond, nil
		case int64:
			return time.Duration(v) * time.Millisecond, nil
		case float64:
			return time.Duration(v) * time.Millisecond, nil
		case string:
			if d, err := time.ParseDuration(v); err == nil {
				return d, nil
			}
			var ms int64
			if _, err := fmt.Sscan(v, &ms); err == nil {
				return time.Duration(ms) * time.Millisecond, nil
			}
			return data, nil
		default:
			return data, nil
		}
	}
}
