// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

//go:build tools

// Package main pins test dependencies that are otherwise only reached from
// build-tagged files.
package main

import (
	_ "github.com/onsi/ginkgo/v2"
	_ "github.com/onsi/gomega"
	_ "github.com/stretchr/testify/mock"
	_ "github.com/stretchr/testify/require"
)
