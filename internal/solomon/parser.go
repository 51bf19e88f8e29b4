// Package solomon parses Solomon-format VRPTW benchmark files.
//
// The format is a plain-text header naming the instance, a VEHICLE section
// with NUMBER and CAPACITY, and a customer table whose first row is the
// depot. The parser is a thin I/O wrapper: it produces model records and
// leaves all validation beyond basic shape to the solver.
package solomon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"vrpsolve/internal/model"
)

// Parse reads one Solomon instance. maxCustomers > 0 truncates the customer
// list (a standard trick for running the 100-customer benchmarks at smaller
// sizes); 0 keeps every customer.
func Parse(r io.Reader, maxCustomers int) (model.Instance, error) {
	var inst model.Instance
	sc := bufio.NewScanner(r)

	var lines []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return inst, err
	}
	if len(lines) == 0 {
		return inst, fmt.Errorf("solomon: empty input")
	}
	inst.Name = lines[0]

	vehicleCount := 0
	capacity := 0
	custStart := -1
	for i, line := range lines {
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "NUMBER") && strings.Contains(upper, "CAPACITY"):
			// Header row of the vehicle section; values are on the next line.
			if i+1 >= len(lines) {
				return inst, fmt.Errorf("solomon: vehicle section truncated")
			}
			fields := strings.Fields(lines[i+1])
			if len(fields) < 2 {
				return inst, fmt.Errorf("solomon: malformed vehicle line %q", lines[i+1])
			}
			var err error
			if vehicleCount, err = strconv.Atoi(fields[0]); err != nil {
				return inst, fmt.Errorf("solomon: vehicle number: %w", err)
			}
			if capacity, err = strconv.Atoi(fields[1]); err != nil {
				return inst, fmt.Errorf("solomon: vehicle capacity: %w", err)
			}
		case strings.HasPrefix(upper, "CUST NO."):
			custStart = i + 1
		}
		if custStart >= 0 {
			break
		}
	}
	if vehicleCount <= 0 || capacity <= 0 {
		return inst, fmt.Errorf("solomon: missing vehicle section")
	}
	if custStart < 0 {
		return inst, fmt.Errorf("solomon: missing customer table")
	}

	// The first data row is the depot regardless of its id column; benchmark
	// files number it 0, but generated files do not always.
	seenDepot := false
	for _, line := range lines[custStart:] {
		fields := strings.Fields(line)
		if len(fields) < 7 {
			continue
		}
		c, err := parseCustomer(fields)
		if err != nil {
			return inst, err
		}
		if !seenDepot {
			inst.Depot = c
			seenDepot = true
			continue
		}
		inst.Customers = append(inst.Customers, c)
		if maxCustomers > 0 && len(inst.Customers) >= maxCustomers {
			break
		}
	}
	if len(inst.Customers) == 0 {
		return inst, fmt.Errorf("solomon: no customers in table")
	}

	inst.Vehicles = make([]model.Vehicle, vehicleCount)
	for k := range inst.Vehicles {
		inst.Vehicles[k] = model.Vehicle{ID: k + 1, Capacity: capacity}
	}
	return inst, nil
}

// ParseFile parses a Solomon instance from disk.
func ParseFile(path string, maxCustomers int) (model.Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Instance{}, err
	}
	defer f.Close()
	inst, err := Parse(f, maxCustomers)
	if err != nil {
		return inst, fmt.Errorf("%s: %w", path, err)
	}
	return inst, nil
}

func parseCustomer(fields []string) (model.Customer, error) {
	var c model.Customer
	nums := make([]float64, 7)
	for i := 0; i < 7; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return c, fmt.Errorf("solomon: customer field %d: %w", i, err)
		}
		nums[i] = v
	}
	c.ID = int(nums[0])
	c.Location = model.Point{X: nums[1], Y: nums[2]}
	c.Demand = int(nums[3])
	c.Ready = nums[4]
	c.Due = nums[5]
	c.Service = nums[6]
	return c, nil
}
