/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension keeps a single configuration object, stored under the
"_c:<package name>" key. The object is loaded from the genesis file
"conf" section, validated and written once. Handlers read it back with Load.
*/
package gconf
