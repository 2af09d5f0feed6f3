// clone_rebuild.go: Lane cloner for builds that rebuild every context from session parameters.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

//go:build cryptodev_rebuild

package cryptodev

var defaultCloner contextCloner = rebuildCloner{}
