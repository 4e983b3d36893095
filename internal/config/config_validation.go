// SPDX-License-Identifier: Apache-2.0

package config

// applyDefaults fills in the fields that have a safe built-in default and
// were not supplied by any source.
func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Crypto.Cipher == "" {
		cfg.Crypto.Cipher = CipherAESGCM
	}
	if cfg.Storage.DB.Driver == "" {
		cfg.Storage.DB.Driver = DriverPostgres
	}
}

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Crypto.Cipher != CipherAESGCM && cfg.Crypto.Cipher != CipherChaCha20 {
		return ErrInvalidCryptoConfigs
	}

	if cfg.Storage.DB.Driver != DriverPostgres && cfg.Storage.DB.Driver != DriverSQLite {
		return ErrInvalidStorageConfigs
	}
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Workers.CryptoPoolSize < 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
